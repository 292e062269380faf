package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/features/raffle/models"
)

type fakeRaffleRepo struct {
	mu      sync.Mutex
	nextID  int64
	raffles map[int64]*models.Raffle
	numbers *fakeNumberRepo
}

func newFakeRaffleRepo(numbers *fakeNumberRepo) *fakeRaffleRepo {
	return &fakeRaffleRepo{nextID: 1, raffles: make(map[int64]*models.Raffle), numbers: numbers}
}

func (r *fakeRaffleRepo) CreateWithNumbers(_ context.Context, raffle *models.Raffle, values []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raffle.ID = r.nextID
	r.nextID++
	raffle.CreatedAt = time.Now()
	r.raffles[raffle.ID] = raffle
	r.numbers.seed(raffle.ID, values)
	return nil
}

func (r *fakeRaffleRepo) GetByID(_ context.Context, id int64) (*models.Raffle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raffle, ok := r.raffles[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Rifa", id)
	}
	return raffle, nil
}

func (r *fakeRaffleRepo) ListActive(_ context.Context) ([]*models.Raffle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Raffle
	for _, raffle := range r.raffles {
		if raffle.Status == models.RaffleStatusActive {
			out = append(out, raffle)
		}
	}
	return out, nil
}

func (r *fakeRaffleRepo) ListAll(_ context.Context) ([]*models.Raffle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Raffle
	for _, raffle := range r.raffles {
		out = append(out, raffle)
	}
	return out, nil
}

// fakeNumberRepo mirrors the conditional-update contract of the postgres
// ledger: a single mutex-guarded compare-and-set over the whole value set.
type fakeNumberRepo struct {
	mu   sync.Mutex
	rows map[int64]map[string]*models.Number
}

func newFakeNumberRepo() *fakeNumberRepo {
	return &fakeNumberRepo{rows: make(map[int64]map[string]*models.Number)}
}

func (r *fakeNumberRepo) seed(raffleID int64, values []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byValue := make(map[string]*models.Number, len(values))
	for _, v := range values {
		byValue[v] = &models.Number{RaffleID: raffleID, Value: v, Status: models.NumberStatusAvailable}
	}
	r.rows[raffleID] = byValue
}

func (r *fakeNumberRepo) get(raffleID int64, value string) *models.Number {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := *r.rows[raffleID][value]
	return &n
}

func (r *fakeNumberRepo) forceExpire(raffleID int64, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	past := time.Now().Add(-time.Second)
	r.rows[raffleID][value].ReservedUntil = &past
}

func (r *fakeNumberRepo) ListByRaffle(_ context.Context, raffleID int64) ([]*models.Number, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Number
	for _, n := range r.rows[raffleID] {
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeNumberRepo) takeable(n *models.Number, userID int64, now time.Time) bool {
	if n.Status == models.NumberStatusAvailable {
		return true
	}
	if n.Status != models.NumberStatusReserved {
		return false
	}
	if n.ReservedUntil != nil && !n.ReservedUntil.After(now) {
		return true
	}
	return n.UserID != nil && *n.UserID == userID
}

func (r *fakeNumberRepo) Reserve(_ context.Context, raffleID int64, values []string, userID int64, until time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()

	var conflicting []string
	for _, v := range values {
		n, ok := r.rows[raffleID][v]
		if !ok || !r.takeable(n, userID, now) {
			conflicting = append(conflicting, v)
		}
	}
	if len(conflicting) > 0 {
		return conflicting, nil
	}

	for _, v := range values {
		n := r.rows[raffleID][v]
		deadline := until
		n.Status = models.NumberStatusReserved
		n.UserID = &userID
		n.ReservedUntil = &deadline
	}
	return nil, nil
}

func (r *fakeNumberRepo) Release(_ context.Context, raffleID int64, values []string, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		n, ok := r.rows[raffleID][v]
		if !ok || n.Status != models.NumberStatusReserved || n.UserID == nil || *n.UserID != userID {
			continue
		}
		n.Status = models.NumberStatusAvailable
		n.UserID = nil
		n.ReservedUntil = nil
	}
	return nil
}

func (r *fakeNumberRepo) VerifyReserved(_ context.Context, raffleID int64, values []string, userID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var stale []string
	for _, v := range values {
		n, ok := r.rows[raffleID][v]
		if !ok || n.Status != models.NumberStatusReserved ||
			n.UserID == nil || *n.UserID != userID ||
			n.ReservedUntil == nil || !n.ReservedUntil.After(now) {
			stale = append(stale, v)
		}
	}
	return stale, nil
}

func newTestService(t *testing.T) (RaffleService, *fakeRaffleRepo, *fakeNumberRepo) {
	t.Helper()
	numbers := newFakeNumberRepo()
	raffles := newFakeRaffleRepo(numbers)
	svc := NewRaffleService(raffles, numbers, nil, 10*time.Minute, 5*time.Second)
	return svc, raffles, numbers
}

func activeRaffle(t *testing.T, svc RaffleService) *models.Raffle {
	t.Helper()
	raffle, err := svc.Create(context.Background(), 1, models.CreateRaffleInput{
		Title:       "Rifa de prueba",
		TicketPrice: 5,
		FirstPrize:  1000,
		SecondPrize: 500,
		ThirdPrize:  250,
		DrawDate:    time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return raffle
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	base := models.CreateRaffleInput{
		Title:       "Rifa",
		TicketPrice: 5,
		FirstPrize:  100,
		SecondPrize: 50,
		ThirdPrize:  25,
		DrawDate:    time.Now().Add(time.Hour),
	}

	for name, mutate := range map[string]func(*models.CreateRaffleInput){
		"missing title":  func(in *models.CreateRaffleInput) { in.Title = "" },
		"zero price":     func(in *models.CreateRaffleInput) { in.TicketPrice = 0 },
		"negative prize": func(in *models.CreateRaffleInput) { in.SecondPrize = -1 },
		"zero draw date": func(in *models.CreateRaffleInput) { in.DrawDate = time.Time{} },
	} {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := svc.Create(ctx, 1, in)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
		})
	}
}

func TestCreateSeedsFullNumberSpace(t *testing.T) {
	svc, _, numbers := newTestService(t)

	raffle := activeRaffle(t, svc)

	rows, err := numbers.ListByRaffle(context.Background(), raffle.ID)
	require.NoError(t, err)
	assert.Len(t, rows, models.NumbersPerRaffle)

	availability, err := svc.GetAvailability(context.Background(), raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NumberStatusAvailable, availability["000"])
	assert.Equal(t, models.NumberStatusAvailable, availability["999"])
}

func TestReserveHappyPath(t *testing.T) {
	svc, _, numbers := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	until, err := svc.Reserve(ctx, raffle.ID, 7, []string{"001", "042"})
	require.NoError(t, err)
	assert.True(t, until.After(time.Now().Add(9*time.Minute)))

	n := numbers.get(raffle.ID, "042")
	assert.Equal(t, models.NumberStatusReserved, n.Status)
	require.NotNil(t, n.UserID)
	assert.Equal(t, int64(7), *n.UserID)
}

func TestReserveSelectionValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	_, err := svc.Reserve(ctx, raffle.ID, 7, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	_, err = svc.Reserve(ctx, raffle.ID, 7, []string{"42"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	_, err = svc.Reserve(ctx, raffle.ID, 7, []string{"042", "042"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestReserveInactiveRaffle(t *testing.T) {
	svc, raffles, _ := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)
	raffles.raffles[raffle.ID].Status = models.RaffleStatusClosed

	_, err := svc.Reserve(ctx, raffle.ID, 7, []string{"001"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeState))
}

func TestReserveAllOrNothing(t *testing.T) {
	svc, _, numbers := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	_, err := svc.Reserve(ctx, raffle.ID, 1, []string{"002"})
	require.NoError(t, err)

	// Second user asks for three values, one of which is held live.
	_, err = svc.Reserve(ctx, raffle.ID, 2, []string{"001", "002", "003"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
	assert.Equal(t, []string{"002"}, appErr.Details["conflicting_values"])

	// None of the free values were touched.
	assert.Equal(t, models.NumberStatusAvailable, numbers.get(raffle.ID, "001").Status)
	assert.Equal(t, models.NumberStatusAvailable, numbers.get(raffle.ID, "003").Status)
}

func TestReserveRefreshOwnHold(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	first, err := svc.Reserve(ctx, raffle.ID, 7, []string{"005"})
	require.NoError(t, err)

	second, err := svc.Reserve(ctx, raffle.ID, 7, []string{"005"})
	require.NoError(t, err)
	assert.False(t, second.Before(first))
}

func TestReserveExpiredHoldIsTakeable(t *testing.T) {
	svc, _, numbers := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	_, err := svc.Reserve(ctx, raffle.ID, 1, []string{"010"})
	require.NoError(t, err)
	numbers.forceExpire(raffle.ID, "010")

	// Expired hold reads as available.
	availability, err := svc.GetAvailability(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NumberStatusAvailable, availability["010"])

	// And another user can take it.
	_, err = svc.Reserve(ctx, raffle.ID, 2, []string{"010"})
	require.NoError(t, err)

	n := numbers.get(raffle.ID, "010")
	require.NotNil(t, n.UserID)
	assert.Equal(t, int64(2), *n.UserID)
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	const contenders = 32
	values := []string{"100", "200", "300"}

	var wg sync.WaitGroup
	results := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Reserve(ctx, raffle.ID, int64(i+100), values)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
		}
	}
	assert.Equal(t, 1, winners)
}

func TestConcurrentOverlappingReserves(t *testing.T) {
	svc, _, numbers := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	// Pairwise-overlapping selections racing in both directions. Contention
	// must surface as a conflict, never as an internal error, and every
	// value ends up held by exactly one user.
	sets := [][]string{
		{"400", "401", "402"},
		{"402", "403", "404"},
		{"404", "401", "400"},
		{"403", "402", "400"},
	}

	var wg sync.WaitGroup
	results := make([]error, len(sets))
	for i, values := range sets {
		wg.Add(1)
		go func(i int, values []string) {
			defer wg.Done()
			_, results[i] = svc.Reserve(ctx, raffle.ID, int64(i+1), values)
		}(i, values)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict), "got %v", err)
		}
	}
	assert.Equal(t, 1, winners)

	for _, v := range []string{"400", "401", "402", "403", "404"} {
		n := numbers.get(raffle.ID, v)
		if n.Status == models.NumberStatusReserved {
			assert.NotNil(t, n.UserID)
		}
	}
}

func TestRelease(t *testing.T) {
	svc, _, numbers := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	_, err := svc.Reserve(ctx, raffle.ID, 7, []string{"050", "051"})
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, raffle.ID, 7, []string{"050", "051"}))
	assert.Equal(t, models.NumberStatusAvailable, numbers.get(raffle.ID, "050").Status)
	assert.Equal(t, models.NumberStatusAvailable, numbers.get(raffle.ID, "051").Status)
}

func TestReleaseIgnoresOtherUsersHolds(t *testing.T) {
	svc, _, numbers := newTestService(t)
	ctx := context.Background()
	raffle := activeRaffle(t, svc)

	_, err := svc.Reserve(ctx, raffle.ID, 1, []string{"060"})
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, raffle.ID, 2, []string{"060"}))
	assert.Equal(t, models.NumberStatusReserved, numbers.get(raffle.ID, "060").Status)
}

func TestGetAvailabilityUnknownRaffle(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetAvailability(context.Background(), 404)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}
