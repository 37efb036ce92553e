package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"slotbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*CalendarStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slots.json")
	logger := zerolog.Nop()
	store, err := NewCalendarStore(path, &logger)
	require.NoError(t, err)
	return store, path
}

func TestNewCalendarStoreRequiresPath(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewCalendarStore("", &logger)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	store, _ := newTestStore(t)
	cal := store.Load(context.Background())
	assert.NotNil(t, cal)
	assert.Empty(t, cal)
}

func TestLoadCorruptFile(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cal := store.Load(context.Background())
	assert.Empty(t, cal)
}

func TestUpdatePersists(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(cal models.Calendar) error {
		cal["2025-06-02"] = &models.Day{
			Open: []string{"18:00"},
			Booked: []models.Appointment{
				{Hour: "18:00", UserID: 7, Phone: "+79990000000", Name: "Иван", Day: "2025-06-02"},
			},
		}
		return nil
	})
	require.NoError(t, err)
	require.FileExists(t, path)

	// Fresh store reads the same document back.
	logger := zerolog.Nop()
	reopened, err := NewCalendarStore(path, &logger)
	require.NoError(t, err)

	cal := reopened.Load(ctx)
	require.Contains(t, cal, "2025-06-02")
	assert.Equal(t, []string{"18:00"}, cal["2025-06-02"].Open)
	require.Len(t, cal["2025-06-02"].Booked, 1)
	assert.Equal(t, int64(7), cal["2025-06-02"].Booked[0].UserID)
}

func TestUpdateErrorAbortsSave(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	sentinel := fmt.Errorf("abort")
	err := store.Update(ctx, func(cal models.Calendar) error {
		cal["2025-06-02"] = &models.Day{Open: []string{"18:00"}}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "aborted update must not write the file")
	assert.Empty(t, store.Load(ctx))
}

func TestEnsureDay(t *testing.T) {
	store, _ := newTestStore(t)

	t.Run("WeekdayGetsDefaults", func(t *testing.T) {
		cal := models.Calendar{}
		day, err := store.EnsureDay(cal, "2025-06-02") // Monday
		require.NoError(t, err)
		assert.Equal(t, []string{"18:00", "19:00", "20:00"}, day.Open)
		assert.Empty(t, day.Booked)
	})

	t.Run("WeekendStartsClosed", func(t *testing.T) {
		cal := models.Calendar{}
		day, err := store.EnsureDay(cal, "2025-06-07") // Saturday
		require.NoError(t, err)
		assert.Empty(t, day.Open)
	})

	t.Run("ExistingDayUntouched", func(t *testing.T) {
		existing := &models.Day{Open: []string{"10:00"}}
		cal := models.Calendar{"2025-06-02": existing}
		day, err := store.EnsureDay(cal, "2025-06-02")
		require.NoError(t, err)
		assert.Same(t, existing, day)
		assert.Equal(t, []string{"10:00"}, day.Open)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		cal := models.Calendar{}
		_, err := store.EnsureDay(cal, "02.06.2025")
		assert.Error(t, err)
	})
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Update(ctx, func(cal models.Calendar) error {
				day, err := store.EnsureDay(cal, "2025-06-02")
				if err != nil {
					return err
				}
				day.Booked = append(day.Booked, models.Appointment{
					Hour:   fmt.Sprintf("%02d:00", 10+n),
					UserID: int64(n + 1),
					Day:    "2025-06-02",
				})
				return nil
			})
		}(i)
	}
	wg.Wait()

	cal := store.Load(ctx)
	require.Contains(t, cal, "2025-06-02")
	assert.Len(t, cal["2025-06-02"].Booked, workers, "no update may be lost")
}
