package repository

import (
	"context"
	"database/sql"
	"testing"

	"propertypal/common/database"
	"propertypal/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestSQLProperties_ListDecodesPayload(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLProperties(db, database.SQLite)

	mock.ExpectQuery(`SELECT payload FROM properties ORDER BY created_at, id`).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow(`{"id":"p1","name":"Sunrise PG","type":"Hostel/PG","buildings":[{"id":"b1","name":"A","floors":[{"id":"f1","label":"G","rooms":[{"id":"r1","roomNumber":"101","shareType":"double","beds":[{"id":"B1"},{"id":"B2"}]}]}]}]}`))

	list, err := repo.ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].TotalBeds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProperties_GetNotFound(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLProperties(db, database.Postgres)

	mock.ExpectQuery(`SELECT payload FROM properties WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := repo.GetProperty(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProperties_SaveUpserts(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLProperties(db, database.SQLite)
	p := &domain.Property{ID: "p1", Name: "Sunrise PG", CreatedAt: "2026-01-01T00:00:00Z"}

	mock.ExpectExec(`INSERT INTO properties \(id, name, created_at, payload\) VALUES \(\?, \?, \?, \?\)\s+ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("p1", "Sunrise PG", "2026-01-01T00:00:00Z", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveProperty(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLProperties_DeleteMissing(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLProperties(db, database.Postgres)

	mock.ExpectExec(`DELETE FROM properties WHERE id = \$1`).
		WithArgs("p9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteProperty(context.Background(), "p9"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMembers_ListByProperty(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLMembers(db, database.Postgres)

	mock.ExpectQuery(`SELECT payload FROM members WHERE property_id = \$1 ORDER BY created_at, id`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow(`{"id":"m1","name":"Asha","phone":"9876543210","propertyId":"p1","bedAmount":"6500"}`))

	list, err := repo.ListMembers(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.Money(6500), list[0].BedAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMembers_SaveAndDelete(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLMembers(db, database.SQLite)
	m := &domain.Member{ID: "m1", Name: "Asha", PropertyID: "p1", CreatedAt: "2026-01-01T00:00:00Z"}

	mock.ExpectExec(`INSERT INTO members`).
		WithArgs("m1", "p1", "2026-01-01T00:00:00Z", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM members WHERE id = \?`).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveMember(context.Background(), m))
	require.NoError(t, repo.DeleteMember(context.Background(), "m1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLPayments_ListByMember(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLPayments(db, database.Postgres)

	mock.ExpectQuery(`SELECT payload FROM payments WHERE member_id = \$1 ORDER BY created_at, id`).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow(`{"id":"pay1","memberId":"m1","amount":"8000","date":"2026-03-01T00:00:00Z","status":"paid"}`))

	list, err := repo.ListPayments(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.Money(8000), list[0].Amount)
	assert.Equal(t, "paid", list[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLPayments_SaveGetDelete(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewSQLPayments(db, database.SQLite)
	p := &domain.Payment{ID: "pay1", MemberID: "m1", Amount: 8000, CreatedAt: "2026-03-01T00:00:00Z"}

	mock.ExpectExec(`INSERT INTO payments \(id, member_id, created_at, payload\)`).
		WithArgs("pay1", "m1", "2026-03-01T00:00:00Z", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT payload FROM payments WHERE id = \?`).
		WithArgs("pay2").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectExec(`DELETE FROM payments WHERE id = \?`).
		WithArgs("pay1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SavePayment(context.Background(), p))
	_, err := repo.GetPayment(context.Background(), "pay2")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, repo.DeletePayment(context.Background(), "pay1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock := setupMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS properties`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS members`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_members_property`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS payments`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_payments_member`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
