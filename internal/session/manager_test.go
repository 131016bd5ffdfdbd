package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/cart"
	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("manager-test-secret")

func newTestManager(t *testing.T) (*Manager, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore()
	clock := newFakeClock()
	m := NewManager(store, clock, ManagerConfig{Secret: testSecret, IdleTimeout: 30 * time.Minute})
	t.Cleanup(m.Close)
	return m, store, clock
}

func storeStaff() models.Principal {
	storeID := int64(4)
	return models.Principal{ID: 11, Username: "anna", Role: models.RoleStoreStaff, StoreID: &storeID, SessionToken: "remote-token"}
}

func TestCreateAndResolve(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	rec, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)
	require.NotNil(t, rec.Cart)
	assert.Equal(t, 1, store.Len())
	assert.True(t, m.Monitor().Active(rec.ID))

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "remote-token", got.Principal.SessionToken)
	assert.NotNil(t, got.Cart)
}

func TestCreateOmitsCartForOtherRoles(t *testing.T) {
	m, _, _ := newTestManager(t)
	rec, _, err := m.Create(context.Background(), models.Principal{ID: 3, Role: models.RoleKitchenManager})
	require.NoError(t, err)
	assert.Nil(t, rec.Cart)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	_, err := m.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Resolve(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrNoSession)

	forged, err := utils.SignSessionToken([]byte("other"), "x", 11, 3, clock.Now())
	require.NoError(t, err)
	_, err = m.Resolve(ctx, forged)
	assert.ErrorIs(t, err, ErrNoSession)

	unknown, err := utils.SignSessionToken(testSecret, "missing", 11, 3, clock.Now())
	require.NoError(t, err)
	_, err = m.Resolve(ctx, unknown)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestResolveDetectsRoleMismatch(t *testing.T) {
	m, store, clock := newTestManager(t)
	ctx := context.Background()

	rec, _, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)

	escalated, err := utils.SignSessionToken(testSecret, rec.ID, 11, int(models.RoleAdmin), clock.Now())
	require.NoError(t, err)
	_, err = m.Resolve(ctx, escalated)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 0, store.Len(), "tampered session is destroyed")
}

func TestResolveDiscardsCorruptRecord(t *testing.T) {
	m, store, clock := newTestManager(t)
	ctx := context.Background()

	store.Put("bad", []byte(`{"id":"bad","principal":{"id":0}}`))
	token, err := utils.SignSessionToken(testSecret, "bad", 0, 0, clock.Now())
	require.NoError(t, err)

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 0, store.Len())
}

func TestIdleSessionExpiresThroughMonitor(t *testing.T) {
	m, store, clock := newTestManager(t)
	ctx := context.Background()

	_, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	assert.Equal(t, 0, store.Len())

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResolveExpiresStaleRecordWithoutTimer(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	ctx := context.Background()

	// A record written by an instance that is gone: no timer watches it here.
	first := NewManager(store, clock, ManagerConfig{Secret: testSecret, IdleTimeout: 30 * time.Minute})
	_, token, err := first.Create(ctx, storeStaff())
	require.NoError(t, err)
	first.Close()

	clock.Advance(45 * time.Minute)

	second := NewManager(store, clock, ManagerConfig{Secret: testSecret, IdleTimeout: 30 * time.Minute})
	defer second.Close()
	_, err = second.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, apperr.MsgSessionExpired, apperr.MessageOf(err))
	assert.Equal(t, 0, store.Len())
}

func TestResolveAdoptsRecordFromSharedStore(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	ctx := context.Background()

	first := NewManager(store, clock, ManagerConfig{Secret: testSecret, IdleTimeout: 30 * time.Minute})
	rec, token, err := first.Create(ctx, storeStaff())
	require.NoError(t, err)
	first.Close()

	second := NewManager(store, clock, ManagerConfig{Secret: testSecret, IdleTimeout: 30 * time.Minute})
	defer second.Close()
	_, err = second.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, second.Monitor().Active(rec.ID))
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	m, store, clock := newTestManager(t)
	ctx := context.Background()

	rec, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		clock.Advance(20 * time.Minute)
		require.NoError(t, m.Touch(ctx, rec, ActivityKeyboard))
	}
	assert.Equal(t, 1, store.Len())

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, clock.Now().Equal(got.LastSeen))
}

func TestDestroyRemovesEverything(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	rec, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)
	require.NoError(t, m.Destroy(ctx, rec.ID))

	assert.False(t, m.Monitor().Active(rec.ID))
	assert.Equal(t, 0, store.Len())
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTouchDoesNotRestoreClearedCart(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	rec, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)
	require.NoError(t, m.Update(ctx, rec, func(fresh *Record) error {
		fresh.Cart.Lines = []cart.Line{{ProductID: 5, ProductName: "Brioche", Quantity: 2}}
		return nil
	}))

	checkout, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	heartbeat, err := m.Resolve(ctx, token)
	require.NoError(t, err)

	require.NoError(t, m.Update(ctx, checkout, func(fresh *Record) error {
		fresh.Cart = cart.New()
		return nil
	}))
	clock.Advance(time.Minute)
	require.NoError(t, m.Touch(ctx, heartbeat, ActivityPointer))

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, got.Cart.IsEmpty(), "a heartbeat holding an old copy must not bring the cart back")
	assert.True(t, clock.Now().Equal(got.LastSeen))
}

func TestUpdateSerializesConcurrentCartChanges(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	rec, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)

	const writers = 8
	copies := make([]*Record, writers)
	for i := range copies {
		copies[i], err = m.Resolve(ctx, token)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i, c := range copies {
		wg.Add(1)
		go func(productID int64, stale *Record) {
			defer wg.Done()
			assert.NoError(t, m.Update(ctx, stale, func(fresh *Record) error {
				fresh.Cart.Lines = append(fresh.Cart.Lines, cart.Line{ProductID: productID, Quantity: 1})
				return nil
			}))
		}(int64(i+1), c)
	}
	wg.Wait()

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Len(t, got.Cart.Lines, writers, "no update is lost")
	assert.Equal(t, rec.ID, got.ID)
}

func TestUpdateLeavesRecordWhenFnFails(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	rec, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)

	rejected := apperr.Validation("quantity", "Only 1 left of Brioche.")
	err = m.Update(ctx, rec, func(fresh *Record) error {
		fresh.Cart.Lines = []cart.Line{{ProductID: 5, Quantity: 3}}
		return rejected
	})
	assert.ErrorIs(t, err, rejected)
	assert.True(t, rec.Cart.IsEmpty())

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, got.Cart.IsEmpty())

	require.NoError(t, m.Destroy(ctx, rec.ID))
	err = m.Update(ctx, rec, func(*Record) error { return nil })
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, m.Touch(ctx, rec, ActivityPointer), ErrNoSession)
}

func TestRemoteTokenIsStoredButNotRendered(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	rec, token, err := m.Create(ctx, storeStaff())
	require.NoError(t, err)

	body, err := json.Marshal(rec.Principal)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "remote-token")

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "remote-token", got.Principal.SessionToken)
}
