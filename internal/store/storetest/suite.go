// Package storetest holds the behaviour every RecordStore implementation
// must show. Dialect packages call Run from their own tests.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phairoj-Ja/student-score-web/internal/models"
	"github.com/Phairoj-Ja/student-score-web/internal/store"
)

// Factory returns a freshly migrated, empty store and its cleanup.
type Factory func(t *testing.T) (store.RecordStore, func())

func Run(t *testing.T, newStore Factory) {
	t.Run("admin seed", func(t *testing.T) { testAdminSeed(t, newStore) })
	t.Run("courses", func(t *testing.T) { testCourses(t, newStore) })
	t.Run("student records", func(t *testing.T) { testStudentRecords(t, newStore) })
	t.Run("duplicate key", func(t *testing.T) { testDuplicateKey(t, newStore) })
	t.Run("concurrent insert", func(t *testing.T) { testConcurrentInsert(t, newStore) })
	t.Run("credentials", func(t *testing.T) { testCredentials(t, newStore) })
}

func cs101() *models.Course {
	return &models.Course{
		Code:      "CS101",
		Name:      "Intro to Programming",
		Status:    models.StatusActive,
		MaxScores: models.MaxScores{MaxTotal: 100, MaxMid: 30, MaxFinal: 40},
		Factors:   models.Factors{ClassFactor: 1, LabFactor: 3, HWFactor: 5, QuizFactor: 2},
	}
}

func alice() *models.Record {
	return &models.Record{
		Course:   "CS101",
		UserID:   "alice",
		FullName: "Alice Example",
		Status:   models.StatusActive,
		MidTerm:  30,
		Final:    40,
		Class:    make(models.Slots, 15),
		Lab:      make(models.Slots, 15),
		Homework: models.Slots{10, 10, 10, 10, 10},
		Quiz:     make(models.Slots, 10),
	}
}

func testAdminSeed(t *testing.T, newStore Factory) {
	s, cleanup := newStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.EnsureAdmin(ctx))
	require.NoError(t, s.EnsureAdmin(ctx), "seeding twice must be harmless")

	admin, err := s.GetStudentRecord(ctx, models.AdminCourse, models.AdminUserID)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.AdminFullName, admin.FullName)
	assert.Equal(t, models.StatusActive, admin.Status)
	assert.False(t, admin.HasCredential())
	assert.True(t, admin.IsAdmin())
}

func testCourses(t *testing.T, newStore Factory) {
	s, cleanup := newStore(t)
	defer cleanup()
	ctx := context.Background()

	course := cs101()
	require.NoError(t, s.InsertCourse(ctx, course))
	require.NoError(t, s.InsertCourse(ctx, &models.Course{
		Code: "AA100", Name: "Suspended one", Status: models.StatusSuspended,
	}))

	t.Run("get", func(t *testing.T) {
		got, err := s.GetCourse(ctx, "CS101")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, *course, *got)

		missing, err := s.GetCourse(ctx, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("list ordered and filtered", func(t *testing.T) {
		all, err := s.ListCourses(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "AA100", all[0].Code)
		assert.Equal(t, "CS101", all[1].Code)

		active, err := s.ListCourses(ctx, models.StatusActive)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "CS101", active[0].Code)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		err := s.InsertCourse(ctx, cs101())
		assert.ErrorIs(t, err, store.ErrDuplicateKey)
	})

	t.Run("partial update", func(t *testing.T) {
		name := "Programming I"
		status := models.StatusSuspended
		require.NoError(t, s.UpdateCourseFields(ctx, "CS101", models.CourseUpdate{Name: &name, Status: &status}))

		got, err := s.GetCourse(ctx, "CS101")
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)
		assert.Equal(t, status, got.Status)
		assert.Equal(t, course.Factors, got.Factors, "untouched fields keep their value")

		err = s.UpdateCourseFields(ctx, "NOPE", models.CourseUpdate{Name: &name})
		assert.ErrorIs(t, err, store.ErrRecordNotFound)
		err = s.UpdateCourseFields(ctx, "NOPE", models.CourseUpdate{})
		assert.ErrorIs(t, err, store.ErrRecordNotFound)
	})

	t.Run("upsert", func(t *testing.T) {
		c := cs101()
		c.Name = "Upserted"
		c.HWFactor = 4
		require.NoError(t, s.UpsertCourse(ctx, c))

		got, err := s.GetCourse(ctx, "CS101")
		require.NoError(t, err)
		assert.Equal(t, "Upserted", got.Name)
		assert.Equal(t, 4.0, got.HWFactor)

		fresh := &models.Course{Code: "ZZ900", Name: "New", Status: models.StatusActive}
		require.NoError(t, s.UpsertCourse(ctx, fresh))
		got, err = s.GetCourse(ctx, "ZZ900")
		require.NoError(t, err)
		require.NotNil(t, got)
	})
}

func testStudentRecords(t *testing.T, newStore Factory) {
	s, cleanup := newStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.EnsureAdmin(ctx))
	require.NoError(t, s.InsertCourse(ctx, cs101()))

	a := alice()
	require.NoError(t, s.InsertStudentRecord(ctx, a))
	assert.NotZero(t, a.ID)

	b := alice()
	b.UserID = "bob"
	b.FullName = "Bob Example"
	require.NoError(t, s.InsertStudentRecord(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)

	t.Run("lookup by key and id", func(t *testing.T) {
		got, err := s.GetStudentRecord(ctx, "CS101", "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, a.Homework, got.Homework)
		assert.Equal(t, 30.0, got.MidTerm)
		assert.Len(t, got.Class, 15)

		byID, err := s.GetStudentRecordByID(ctx, b.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "bob", byID.UserID)

		missing, err := s.GetStudentRecord(ctx, "CS101", "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)

		missingID, err := s.GetStudentRecordByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, missingID)
	})

	t.Run("list excludes given user", func(t *testing.T) {
		records, err := s.ListStudentRecords(ctx, "CS101", "bob")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "alice", records[0].UserID)

		records, err = s.ListStudentRecords(ctx, models.AdminCourse, models.AdminUserID)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("partial update", func(t *testing.T) {
		status := models.StatusSuspended
		scores := models.Scores{
			MidTerm:  12,
			Final:    13,
			Homework: models.Slots{1, 2, 3, 4, 5},
			Class:    make(models.Slots, 15),
			Lab:      make(models.Slots, 15),
			Quiz:     make(models.Slots, 10),
		}
		require.NoError(t, s.UpdateStudentRecord(ctx, a.ID, models.RecordUpdate{Status: &status, Scores: &scores}))

		got, err := s.GetStudentRecordByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
		assert.Equal(t, "Alice Example", got.FullName)
		assert.Equal(t, 12.0, got.MidTerm)
		assert.Equal(t, models.Slots{1, 2, 3, 4, 5}, got.Homework)

		err = s.UpdateStudentRecord(ctx, 999999, models.RecordUpdate{Status: &status})
		assert.ErrorIs(t, err, store.ErrRecordNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteStudentRecord(ctx, b.ID))
		got, err := s.GetStudentRecordByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.ErrorIs(t, s.DeleteStudentRecord(ctx, b.ID), store.ErrRecordNotFound)
	})
}

func testDuplicateKey(t *testing.T, newStore Factory) {
	s, cleanup := newStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.InsertStudentRecord(ctx, alice()))
	err := s.InsertStudentRecord(ctx, alice())
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	records, err := s.ListStudentRecords(ctx, "CS101", "")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	other := alice()
	other.Course = "CS202"
	assert.NoError(t, s.InsertStudentRecord(ctx, other), "same user in another course is fine")
}

func testConcurrentInsert(t *testing.T, newStore Factory) {
	s, cleanup := newStore(t)
	defer cleanup()
	ctx := context.Background()

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.InsertStudentRecord(ctx, alice())
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, store.ErrDuplicateKey):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)

	records, err := s.ListStudentRecords(ctx, "CS101", "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func testCredentials(t *testing.T, newStore Factory) {
	s, cleanup := newStore(t)
	defer cleanup()
	ctx := context.Background()

	a := alice()
	require.NoError(t, s.InsertStudentRecord(ctx, a))

	require.NoError(t, s.SetCredential(ctx, a.ID, "hashed"))
	got, err := s.GetStudentRecordByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, got.HasCredential())
	assert.Equal(t, "hashed", *got.Password)

	require.NoError(t, s.ClearCredential(ctx, a.ID))
	got, err = s.GetStudentRecordByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.HasCredential())
	assert.Nil(t, got.Password)

	assert.ErrorIs(t, s.SetCredential(ctx, 999999, "x"), store.ErrRecordNotFound)
	assert.ErrorIs(t, s.ClearCredential(ctx, 999999), store.ErrRecordNotFound)
}
