package dao

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daoism/internal/access"
	"github.com/roach88/daoism/internal/logger"
	"github.com/roach88/daoism/internal/query"
	"github.com/roach88/daoism/internal/spex"
	"github.com/roach88/daoism/internal/testutil"
)

func TestNew_UnknownEntity(t *testing.T) {
	p := newSQLiteProvider(t)

	_, err := New[*Widget](p, "Gizmo")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeUnknownEntity))
	assert.Contains(t, err.Error(), "entity=Gizmo")
}

func TestPersist_InsertAssignsIdentityAndTimestamps(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))

	w, err := d.Persist(ctx, &Widget{Name: "bolt", Size: 3})
	require.NoError(t, err)

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", w.ID)
	assert.Equal(t, int64(1), w.Version)
	assert.WithinDuration(t, testutil.Epoch, w.Created, 0)
	assert.WithinDuration(t, testutil.Epoch, w.Modified, 0)
	assert.Nil(t, w.Shipped)

	n, err := d.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPersist_KeepsCallerID(t *testing.T) {
	d := widgetDAO(t, newSQLiteProvider(t))

	w, err := d.Persist(context.Background(), &Widget{ID: "w-custom", Name: "bolt"})
	require.NoError(t, err)
	assert.Equal(t, "w-custom", w.ID)
}

func TestPersist_UpdateIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))

	w, err := d.Persist(ctx, &Widget{Name: "bolt", Size: 3})
	require.NoError(t, err)

	w.Size = 4
	updated, err := d.Persist(ctx, w)
	require.NoError(t, err)

	assert.Equal(t, w.ID, updated.ID)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, int64(4), updated.Size)
	assert.WithinDuration(t, testutil.Epoch, updated.Created, 0, "created is written once")
	assert.WithinDuration(t, testutil.Epoch.Add(time.Second), updated.Modified, 0)

	n, err := d.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPersist_StaleVersionFails(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))

	w, err := d.Persist(ctx, &Widget{Name: "bolt"})
	require.NoError(t, err)

	stale := *w
	w.Name = "bolt-2"
	_, err = d.Persist(ctx, w)
	require.NoError(t, err)

	stale.Name = "bolt-3"
	_, err = d.Persist(ctx, &stale)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeStaleEntity))

	current, ok, err := d.FindByID(ctx, w.ID, access.Default())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bolt-2", current.Name)
}

func TestFindByID(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	stored := seedWidgets(t, d)

	t.Run("found", func(t *testing.T) {
		w, ok, err := d.FindByID(ctx, stored[2].ID, access.Default())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "gear", w.Name)
		require.NotNil(t, w.Shipped)
		assert.True(t, w.Shipped.Equal(*day(3)))
	})

	t.Run("missing", func(t *testing.T) {
		w, ok, err := d.FindByID(ctx, "nope", access.Default())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, w)
	})

	t.Run("empty id", func(t *testing.T) {
		_, ok, err := d.FindByID(ctx, "", access.Lock(access.PessimisticWrite))
		require.NoError(t, err, "an empty id finds nothing before the plan is checked")
		assert.False(t, ok)
	})
}

func TestFindByID_LockModesNeedUnitOfWork(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	stored := seedWidgets(t, d)

	for _, mode := range []access.LockType{access.PessimisticWrite, access.Optimistic} {
		t.Run(mode.String(), func(t *testing.T) {
			_, _, err := d.FindByID(ctx, stored[0].ID, access.Lock(mode))
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrCodeTransactionRequired))
		})
	}

	t.Run("refresh alone is fine", func(t *testing.T) {
		_, ok, err := d.FindByID(ctx, stored[0].ID, access.Refresh())
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestFindByID_OptimisticNeedsVersion(t *testing.T) {
	ctx := context.Background()
	p := newSQLiteProvider(t)
	tags, err := New[*Tag](p, "Tag")
	require.NoError(t, err)

	err = p.RunInTransaction(ctx, func(ctx context.Context) error {
		_, _, err := tags.FindByID(ctx, "red", access.Lock(access.Optimistic))
		return err
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeNotVersioned))
}

func TestSpecifications(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	seedWidgets(t, d)

	tests := []struct {
		name string
		spec spex.Specification[*Widget]
		want []string
	}{
		{"all", spex.All[*Widget](), []string{"bolt", "nut", "gear", "cog"}},
		{"greater than", widgetSize.GreaterThan(3), []string{"gear", "cog"}},
		{"less than", widgetSize.LessThan(3), []string{"nut"}},
		{"greater or equal", widgetSize.GreaterOrEqual(3), []string{"bolt", "gear", "cog"}},
		{"equals", widgetName.Equals("bolt"), []string{"bolt"}},
		{"by id", widgetID.Equals("00000000-0000-0000-0000-000000000002"), []string{"nut"}},
		{"attribute vs attribute", widgetSize.GreaterThanAttr(widgetStock), []string{"nut", "cog"}},
		{"attribute equals attribute", widgetSize.EqualsAttr(widgetStock), []string{"gear"}},
		{"is null", widgetShipped.IsNull(), []string{"nut", "cog"}},
		{"date after", widgetShipped.GreaterThan(*day(2)), []string{"gear"}},
		{"and", widgetSize.GreaterThan(3).And(widgetShipped.IsNull()), []string{"cog"}},
		{"or", widgetName.Equals("bolt").Or(widgetSize.LessThan(3)), []string{"bolt", "nut"}},
		{"nested", widgetSize.GreaterOrEqual(7).And(widgetName.Equals("gear").Or(widgetStock.LessThan(5))), []string{"gear", "cog"}},
		{"no match", widgetSize.GreaterThan(100), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := d.FindAllBy(ctx, tt.spec)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, found)
			} else {
				assert.Equal(t, tt.want, names(found))
			}

			n, err := d.Count(ctx, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, int64(len(found)), n, "count must agree with the rows found")

			exists, err := d.Exists(ctx, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, n > 0, exists)
		})
	}
}

func TestFind_SingleResult(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	d := widgetDAO(t, newSQLiteProvider(t, WithLogger(logger.NewBufferedTestLogger(&buf))))
	seedWidgets(t, d)

	w, ok, err := d.Find(ctx, widgetName.Equals("nut"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), w.Size)

	_, ok, err = d.Find(ctx, widgetName.Equals("sprocket"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), `"message":"no result"`)

	_, _, err = d.Find(ctx, widgetSize.GreaterOrEqual(7))
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeNonUniqueResult))
}

func TestSelect_OrderAndWindow(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	seedWidgets(t, d)

	bySize := spex.From[*Widget]().OrderBy(widgetSize, spex.Desc)

	tests := []struct {
		name string
		sel  spex.Select[*Widget]
		want []string
	}{
		{"ordered, id breaks ties", bySize, []string{"gear", "cog", "bolt", "nut"}},
		{"limit", bySize.Limit(2), []string{"gear", "cog"}},
		{"limit and offset", bySize.Limit(2).Offset(1), []string{"cog", "bolt"}},
		{"offset only", bySize.Offset(3), []string{"nut"}},
		{"zero limit", bySize.Limit(0), nil},
		{"filtered", bySize.Where(widgetShipped.IsNull()), []string{"cog", "nut"}},
		{"by name", spex.From[*Widget]().OrderBy(widgetName, spex.Asc), []string{"bolt", "cog", "gear", "nut"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := d.Select(ctx, tt.sel)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, found)
				return
			}
			assert.Equal(t, tt.want, names(found))
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	stored := seedWidgets(t, d)

	ok, err := d.Delete(ctx, stored[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Delete(ctx, stored[0])
	require.NoError(t, err)
	assert.False(t, ok, "second delete finds no row")

	ok, err = d.Delete(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := d.DeleteAll(ctx, stored)
	require.NoError(t, err)
	assert.False(t, all, "bolt was already gone")

	n, err := d.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSave_UnversionedEntity(t *testing.T) {
	ctx := context.Background()
	p := newSQLiteProvider(t)
	tags, err := New[*Tag](p, "Tag")
	require.NoError(t, err)

	red, err := tags.Persist(ctx, &Tag{Label: "red", Color: "#f00"})
	require.NoError(t, err)
	assert.Equal(t, "#f00", red.Color)

	red.Color = "#ff0000"
	_, err = tags.Persist(ctx, red)
	require.NoError(t, err, "an existing id turns the save into an update")

	all, err := tags.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "#ff0000", all[0].Color)
}

func TestRunInTransaction_IdentityMap(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	stored := seedWidgets(t, d)
	id := stored[1].ID

	assert.False(t, d.IsManaged(ctx, stored[1]), "nothing is managed outside a unit of work")

	err := d.RunInTransaction(ctx, func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))

		first, ok, err := d.FindByID(ctx, id, access.Default())
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, d.IsManaged(ctx, first))

		again, _, err := d.FindByID(ctx, id, access.Default())
		require.NoError(t, err)
		assert.Same(t, first, again, "plain lookups return the managed instance")

		refreshed, _, err := d.FindByID(ctx, id, access.Refresh())
		require.NoError(t, err)
		assert.NotSame(t, first, refreshed, "refresh reloads the row")

		after, _, err := d.FindByID(ctx, id, access.Default())
		require.NoError(t, err)
		assert.Same(t, refreshed, after, "refresh replaces the managed instance")
		return nil
	})
	require.NoError(t, err)
}

func TestRunInTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))

	boom := errors.New("boom")
	err := d.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := d.Persist(ctx, &Widget{Name: "bolt"}); err != nil {
			return err
		}
		// Nested units of work join the outer one.
		return d.RunInTransaction(ctx, func(ctx context.Context) error {
			if _, err := d.Persist(ctx, &Widget{Name: "nut"}); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	n, err := d.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunInTransaction_PersistAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))

	_, err := d.PersistAll(ctx, []*Widget{
		{ID: "same", Name: "a"},
		{ID: "same", Name: "b"},
	})
	require.Error(t, err, "duplicate primary key")

	n, err := d.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunInTransaction_OptimisticReadThenOwnWrite(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	stored := seedWidgets(t, d)

	err := d.RunInTransaction(ctx, func(ctx context.Context) error {
		w, ok, err := d.FindByID(ctx, stored[0].ID, access.Lock(access.Optimistic))
		require.NoError(t, err)
		require.True(t, ok)

		w.Stock = 9
		_, err = d.Persist(ctx, w)
		return err
	})
	require.NoError(t, err, "the unit of work's own update must not fail the version check")

	w, _, err := d.FindByID(ctx, stored[0].ID, access.Default())
	require.NoError(t, err)
	assert.Equal(t, int64(2), w.Version)
	assert.Equal(t, int64(9), w.Stock)
}

func TestIsSameVersion(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	stored := seedWidgets(t, d)

	reloaded, _, err := d.FindByID(ctx, stored[0].ID, access.Default())
	require.NoError(t, err)
	assert.True(t, d.IsSameVersion(stored[0], reloaded))
	assert.NotSame(t, stored[0], reloaded)

	reloaded.Name = "changed"
	updated, err := d.Persist(ctx, reloaded)
	require.NoError(t, err)
	assert.False(t, d.IsSameVersion(stored[0], updated))
	assert.False(t, d.IsSameVersion(stored[0], stored[1]))
	assert.False(t, d.IsSameVersion(stored[0], nil))
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	seedWidgets(t, d)

	t.Run("named", func(t *testing.T) {
		found, err := d.FindAllQuery(ctx, query.Named("widgets-larger-than").Set("SIZE").To(2))
		require.NoError(t, err)
		assert.Equal(t, []string{"gear", "cog", "bolt"}, names(found))
	})

	t.Run("named with window", func(t *testing.T) {
		q := query.Named("widgets-larger-than").Set("SIZE").To(2).SetMaxResults(1).SetFirstResult(1)
		found, err := d.FindAllQuery(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"cog"}, names(found))
	})

	t.Run("literal", func(t *testing.T) {
		q := query.Literal("WHERE {stock} >= :MIN ORDER BY {name}").Set("MIN").To(7)
		found, err := d.FindAllQuery(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"bolt", "gear"}, names(found))
	})

	t.Run("find unique", func(t *testing.T) {
		w, ok, err := d.FindQuery(ctx, query.Named("widget-by-name").Set("NAME").To("gear"))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(7), w.Size)
	})

	t.Run("find none", func(t *testing.T) {
		_, ok, err := d.FindQuery(ctx, query.Named("widget-by-name").Set("NAME").To("sprocket"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("find non-unique", func(t *testing.T) {
		_, _, err := d.FindQuery(ctx, query.Named("widgets-larger-than").Set("SIZE").To(0))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrCodeNonUniqueResult))
	})

	t.Run("native rejected for entities", func(t *testing.T) {
		_, err := d.FindAllQuery(ctx, query.Native("SELECT * FROM widget"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrCodeUnknownQueryType))
	})

	t.Run("native rows", func(t *testing.T) {
		q := query.Native("SELECT name, size FROM widget WHERE size > ? ORDER BY name").Set("min").To(3)
		rows, err := d.Provider().RunQueryRows(ctx, q)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "cog", rows[0]["name"])
		assert.EqualValues(t, 7, rows[1]["size"])
	})

	t.Run("native into struct", func(t *testing.T) {
		var totals []struct {
			Total int64 `db:"total"`
		}
		err := d.Query(ctx, &totals, query.Native("SELECT SUM(stock) AS total FROM widget"))
		require.NoError(t, err)
		require.Len(t, totals, 1)
		assert.Equal(t, int64(19), totals[0].Total)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := d.FindAllQuery(ctx, query.Literal(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid query")
	})

	t.Run("named for another entity", func(t *testing.T) {
		tags, err := New[*Tag](d.Provider(), "Tag")
		require.NoError(t, err)
		_, err = tags.FindAllQuery(ctx, query.Named("widget-by-name").Set("NAME").To("gear"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENTITY_MISMATCH")
	})
}

func TestProvider_LogsStatements(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	p := newSQLiteProvider(t, WithLogger(logger.NewBufferedTestLogger(&buf)))
	d := widgetDAO(t, p)

	_, err := d.Count(ctx, widgetSize.GreaterThan(1))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"component":"dao"`)
	assert.Contains(t, out, `"sql":"SELECT COUNT(*) FROM widget WHERE size > ?"`)
	assert.Contains(t, out, `"args":1`)
	assert.Contains(t, out, `"spec":"`)
	assert.Contains(t, out, `"tx":false`)
}

func TestProvider_CustomNodeKind(t *testing.T) {
	ctx := context.Background()
	d := widgetDAO(t, newSQLiteProvider(t))
	seedWidgets(t, d)

	bindPrefix(d.Provider())

	found, err := d.FindAllBy(ctx, spex.Wrap[*Widget](prefix{path: "name", value: "g"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"gear"}, names(found))
}
