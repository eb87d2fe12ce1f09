package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository/memory"
)

func addFlour(price float64) func(State) (State, error) {
	return func(st State) (State, error) {
		next, _, err := st.AddRawIngredient(models.RawIngredient{Name: "Un", Unit: "kg", Price: price})
		return next, err
	}
}

func TestService_SynchronousSaveWritesChangedSections(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewService(repo, 0, nil)
	defer svc.Close(ctx)

	_, err := svc.Update(ctx, 1, addFlour(20))
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, func(st State) (State, error) {
		next, _, err := st.UpdateSettings(models.Settings{WorkingDays: 26})
		return next, err
	})
	require.NoError(t, err)

	assert.Equal(t, [][]models.Section{
		{models.SectionRawIngredients},
		{models.SectionSettings},
	}, repo.SaveCalls())

	fresh := NewService(repo, 0, nil)
	defer fresh.Close(ctx)
	st, err := fresh.State(ctx, 1)
	require.NoError(t, err)
	require.Len(t, st.RawIngredients, 1)
	assert.Equal(t, "Un", st.RawIngredients[0].Name)
	assert.Equal(t, 26, st.Settings.WorkingDays)
}

func TestService_FailedCommandLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewService(repo, 0, nil)
	defer svc.Close(ctx)

	_, err := svc.Update(ctx, 1, addFlour(20))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = svc.Update(ctx, 1, func(st State) (State, error) {
		st.RawIngredients = nil
		return st, boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := svc.State(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, st.RawIngredients, 1)
	assert.Len(t, repo.SaveCalls(), 1)
}

func TestService_NoChangeNoWrite(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewService(repo, 0, nil)
	defer svc.Close(ctx)

	_, err := svc.Update(ctx, 1, func(st State) (State, error) { return st, nil })
	require.NoError(t, err)
	assert.Empty(t, repo.SaveCalls())
}

func TestService_NewUserGetsDefaults(t *testing.T) {
	svc := NewService(memory.New(), 0, nil)
	defer svc.Close(context.Background())

	s, err := svc.Settings(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.CompanySoleProprietor, s.Company.Type)
	assert.Equal(t, models.DefaultWorkingDays, s.WorkingDays)
	assert.Equal(t, float64(models.DefaultRevenueVATRate), s.RevenueVATRate)
}

func TestService_DebouncedSaveCoalesces(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewService(repo, 50*time.Millisecond, nil)
	defer svc.Close(ctx)

	for i := 0; i < 5; i++ {
		_, err := svc.Update(ctx, 1, addFlour(float64(i)))
		require.NoError(t, err)
	}
	assert.Empty(t, repo.SaveCalls(), "nothing written before the delay")

	require.Eventually(t, func() bool { return len(repo.SaveCalls()) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, repo.SaveCalls(), 1)

	snap, err := repo.LoadState(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, snap.RawIngredients, 5)
}

func TestService_SaveAndCloseFlushPending(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewService(repo, time.Hour, nil)

	_, err := svc.Update(ctx, 1, addFlour(10))
	require.NoError(t, err)
	_, err = svc.Update(ctx, 2, addFlour(10))
	require.NoError(t, err)
	assert.Equal(t, []models.Section{models.SectionRawIngredients}, svc.Dirty(1))

	require.NoError(t, svc.Save(ctx, 1))
	assert.Len(t, repo.SaveCalls(), 1)
	assert.Empty(t, svc.Dirty(1))

	require.NoError(t, svc.Close(ctx))
	assert.Len(t, repo.SaveCalls(), 2)
	_, err = repo.LoadState(ctx, 2)
	assert.NoError(t, err)
}

func TestService_Replace(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewService(repo, 0, nil)
	defer svc.Close(ctx)

	imported := State{
		RawIngredients: []models.RawIngredient{{ID: "r1", Name: "Un", Unit: models.UnitKg, Price: 10}},
		Recipes: []models.Recipe{{
			ID: "p1", Name: "Ekmek", CalculatedPrice: 30,
			Ingredients: []models.IngredientLine{{ID: "l1", Quantity: 1, Unit: models.UnitKg, SourceKind: models.SourceRaw, SourceID: "r1"}},
		}},
	}
	st, err := svc.Replace(ctx, 1, imported)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, st.Recipes[0].TotalCost, 1e-9)
	assert.InDelta(t, 3.0, st.Recipes[0].CostMultiplier, 1e-9)
	assert.Equal(t, [][]models.Section{models.AllSections}, repo.SaveCalls())
}

func TestService_ConcurrentUpdatesAreSerialised(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), 0, nil)
	defer svc.Close(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Update(ctx, 7, func(st State) (State, error) {
				next, _, err := st.AddRawIngredient(models.RawIngredient{Name: fmt.Sprintf("Ürün %d", i), Unit: "kg"})
				return next, err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	st, err := svc.State(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, st.RawIngredients, 20)
}

// failingStore: ilk fails adet SaveState çağrısını reddeder
type failingStore struct {
	*memory.Repository

	mu    sync.Mutex
	fails int
}

func (f *failingStore) SaveState(ctx context.Context, userID uint, snap models.Snapshot, sections []models.Section) error {
	f.mu.Lock()
	if f.fails > 0 {
		f.fails--
		f.mu.Unlock()
		return errors.New("bağlantı koptu")
	}
	f.mu.Unlock()
	return f.Repository.SaveState(ctx, userID, snap, sections)
}

func TestService_CloseRetriesFailedBackgroundSave(t *testing.T) {
	ctx := context.Background()
	repo := &failingStore{Repository: memory.New(), fails: 1}
	svc := NewService(repo, 10*time.Millisecond, nil)

	_, err := svc.Update(ctx, 1, addFlour(20))
	require.NoError(t, err)

	// zamanlayıcı tetiklenir, yazma başarısız olur, bölüm kirli kalır
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.fails == 0
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(svc.Dirty(1)) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, svc.saver.Pending())

	require.NoError(t, svc.Close(ctx))
	assert.Empty(t, svc.Dirty(1))

	snap, err := repo.LoadState(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.RawIngredients, 1)
	assert.Equal(t, "Un", snap.RawIngredients[0].Name)
}

func TestService_CloseReportsPersistentFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingStore{Repository: memory.New(), fails: 100}
	svc := NewService(repo, time.Hour, nil)

	_, err := svc.Update(ctx, 3, addFlour(20))
	require.NoError(t, err)

	err = svc.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kullanıcı 3")
	assert.Equal(t, []models.Section{models.SectionRawIngredients}, svc.Dirty(3))
}

func TestService_SynchronousSaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	repo := &failingStore{Repository: memory.New(), fails: 1}
	svc := NewService(repo, 0, nil)
	defer svc.Close(ctx)

	next, err := svc.Update(ctx, 1, addFlour(20))
	require.ErrorIs(t, err, ErrNotSaved)
	assert.Len(t, next.RawIngredients, 1, "change is applied in memory")
	assert.Equal(t, []models.Section{models.SectionRawIngredients}, svc.Dirty(1))

	// sonraki değişiklik bekleyen bölümü de yazar
	_, err = svc.Update(ctx, 1, func(st State) (State, error) {
		next, _, err := st.UpdateSettings(models.Settings{WorkingDays: 20})
		return next, err
	})
	require.NoError(t, err)
	assert.Equal(t, [][]models.Section{{models.SectionRawIngredients, models.SectionSettings}}, repo.SaveCalls())
	assert.Empty(t, svc.Dirty(1))
}
