package service

import (
	"context"
	"testing"
	"time"

	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// mockBroadcaster records every envelope; tests inspect Calls.
type mockBroadcaster struct{ mock.Mock }

func (m *mockBroadcaster) Broadcast(ctx context.Context, coupleID uuid.UUID, area string, envelope any) error {
	args := m.Called(ctx, coupleID, area, envelope)
	return args.Error(0)
}

var _ Broadcaster = (*mockBroadcaster)(nil)

// areas lists the area of every recorded broadcast in order.
func (m *mockBroadcaster) areas() []string {
	var out []string
	for _, c := range m.Calls {
		out = append(out, c.Arguments.String(2))
	}
	return out
}

func (m *mockBroadcaster) reset() {
	m.Calls = nil
}

type fixture struct {
	db  *gorm.DB
	bc  *mockBroadcaster
	now time.Time
	d   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	f := &fixture{
		db:  db,
		bc:  new(mockBroadcaster),
		now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	f.bc.On("Broadcast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.d = Deps{
		Tx:          repo.NewTransactor(db),
		Users:       repo.NewUserRepository(db),
		Couples:     repo.NewCoupleRepository(db),
		Broadcaster: f.bc,
		Now:         func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := f.d.Users.CreateUser(context.Background(), &model.User{Email: email, Name: email, IsActive: true})
	require.NoError(t, err)
	return u
}

// pair creates two users joined into a complete couple.
func (f *fixture) pair(t *testing.T) (a, b *model.User, coupleID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	a = f.user(t, uuid.NewString()+"@a.example")
	b = f.user(t, uuid.NewString()+"@b.example")
	couples := NewCoupleService(f.d)
	inv, err := couples.CreateInvite(ctx, a.ID)
	require.NoError(t, err)
	resp, err := couples.Join(ctx, b.ID, inv.InviteCode)
	require.NoError(t, err)
	f.bc.reset()
	return a, b, resp.ID
}

func strPtr(s string) *string { return &s }
