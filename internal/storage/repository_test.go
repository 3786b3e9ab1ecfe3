package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensesheet/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateUserAndLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	byEmail, err := repo.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "alice", byEmail.Username)

	byID, err := repo.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = repo.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice2", "alice@example.com", "otherhash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCategoryTypes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	food, err := repo.CreateCategoryType(ctx, "Food", core.KindExpense)
	require.NoError(t, err)
	_, err = repo.CreateCategoryType(ctx, "Salary", core.KindIncome)
	require.NoError(t, err)
	_, err = repo.CreateCategoryType(ctx, "Rent", core.KindExpense)
	require.NoError(t, err)

	byName, err := repo.CategoryTypeByName(ctx, "Food")
	require.NoError(t, err)
	assert.Equal(t, food.ID, byName.ID)
	assert.Equal(t, core.KindExpense, byName.Kind)

	// Lookup is exact on the stored name, so a differently cased name
	// does not match.
	_, err = repo.CategoryTypeByName(ctx, "FOOD")
	assert.ErrorIs(t, err, ErrNotFound)

	expenses, err := repo.ListCategoryTypes(ctx, core.KindExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Food", expenses[0].Name)
	assert.Equal(t, "Rent", expenses[1].Name)

	all, err := repo.ListCategoryTypes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCategoryTypeNameNotUnique(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// The schema allows identical names; preventing them is the handler's
	// check-then-insert, which this layer does not enforce.
	_, err := repo.CreateCategoryType(ctx, "Food", core.KindExpense)
	require.NoError(t, err)
	_, err = repo.CreateCategoryType(ctx, "Food", core.KindIncome)
	require.NoError(t, err)
}

func seedUserWithCategories(t *testing.T, repo *SQLiteRepository) (core.User, core.CategoryType, core.CategoryType) {
	t.Helper()
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	food, err := repo.CreateCategoryType(ctx, "Food", core.KindExpense)
	require.NoError(t, err)
	salary, err := repo.CreateCategoryType(ctx, "Salary", core.KindIncome)
	require.NoError(t, err)
	return user, food, salary
}

func mustCreateTx(t *testing.T, repo *SQLiteRepository, userID, categoryID int64, date string, desc string, cents int64) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	tx, err := repo.CreateTransaction(context.Background(), core.Transaction{
		CategoryID:  categoryID,
		UserID:      userID,
		Date:        d,
		Description: desc,
		Amount:      core.Money{Cents: cents},
	})
	require.NoError(t, err)
	return tx
}

func TestCreateTransactionValidates(t *testing.T) {
	repo := newTestRepo(t)
	user, food, _ := seedUserWithCategories(t, repo)

	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		CategoryID:  food.ID,
		UserID:      user.ID,
		Date:        core.NewDate(2026, 8, 1),
		Description: "groceries",
		Amount:      core.Money{Cents: 0},
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = repo.CreateTransaction(context.Background(), core.Transaction{
		CategoryID:  food.ID,
		UserID:      user.ID,
		Date:        core.NewDate(2026, 8, 1),
		Description: "   ",
		Amount:      core.Money{Cents: 100},
	})
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
}

func TestTransactionsInRangeInclusiveBounds(t *testing.T) {
	repo := newTestRepo(t)
	user, food, _ := seedUserWithCategories(t, repo)

	mustCreateTx(t, repo, user.ID, food.ID, "2026-07-31", "before", 100)
	onFrom := mustCreateTx(t, repo, user.ID, food.ID, "2026-08-01", "on from", 200)
	mid := mustCreateTx(t, repo, user.ID, food.ID, "2026-08-15", "mid", 300)
	onTo := mustCreateTx(t, repo, user.ID, food.ID, "2026-08-31", "on to", 400)
	mustCreateTx(t, repo, user.ID, food.ID, "2026-09-01", "after", 500)

	from, _ := core.ParseDate("2026-08-01")
	to, _ := core.ParseDate("2026-08-31")
	rows, err := repo.TransactionsInRange(context.Background(), user.ID, "", from, to)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, onFrom.ID, rows[0].Transaction.ID)
	assert.Equal(t, mid.ID, rows[1].Transaction.ID)
	assert.Equal(t, onTo.ID, rows[2].Transaction.ID)
	assert.Equal(t, "Food", rows[0].CategoryName)
}

func TestTransactionsInRangeKindFilter(t *testing.T) {
	repo := newTestRepo(t)
	user, food, salary := seedUserWithCategories(t, repo)

	exp := mustCreateTx(t, repo, user.ID, food.ID, "2026-08-10", "groceries", 4250)
	inc := mustCreateTx(t, repo, user.ID, salary.ID, "2026-08-20", "august pay", 250000)

	from, _ := core.ParseDate("2026-08-01")
	to, _ := core.ParseDate("2026-08-31")
	ctx := context.Background()

	expenses, err := repo.TransactionsInRange(ctx, user.ID, core.KindExpense, from, to)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, exp.ID, expenses[0].Transaction.ID)

	incomes, err := repo.TransactionsInRange(ctx, user.ID, core.KindIncome, from, to)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, inc.ID, incomes[0].Transaction.ID)

	// Empty kind is the union of both.
	both, err := repo.TransactionsInRange(ctx, user.ID, "", from, to)
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestTransactionsInRangeScopedToUser(t *testing.T) {
	repo := newTestRepo(t)
	alice, food, _ := seedUserWithCategories(t, repo)
	bob, err := repo.CreateUser(context.Background(), "bob", "bob@example.com", "hash")
	require.NoError(t, err)

	mine := mustCreateTx(t, repo, alice.ID, food.ID, "2026-08-10", "mine", 100)
	mustCreateTx(t, repo, bob.ID, food.ID, "2026-08-10", "theirs", 200)

	from, _ := core.ParseDate("2026-08-01")
	to, _ := core.ParseDate("2026-08-31")
	rows, err := repo.TransactionsInRange(context.Background(), alice.ID, "", from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].Transaction.ID)
}

func TestTransactionByID(t *testing.T) {
	repo := newTestRepo(t)
	user, food, _ := seedUserWithCategories(t, repo)
	tx := mustCreateTx(t, repo, user.ID, food.ID, "2026-08-10", "groceries", 4250)

	row, err := repo.TransactionByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", row.Transaction.Description)
	assert.Equal(t, "Food", row.CategoryName)
	assert.Equal(t, core.KindExpense, row.Kind)
	assert.Equal(t, "2026-08-10", row.Transaction.Date.ISO())

	_, err = repo.TransactionByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingExportAndMarkExported(t *testing.T) {
	repo := newTestRepo(t)
	user, food, _ := seedUserWithCategories(t, repo)
	ctx := context.Background()

	first := mustCreateTx(t, repo, user.ID, food.ID, "2026-08-10", "first", 100)
	second := mustCreateTx(t, repo, user.ID, food.ID, "2026-08-11", "second", 200)

	pending, err := repo.PendingExportTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)

	require.NoError(t, repo.MarkExported(ctx, first.ID))

	pending, err = repo.PendingExportTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	// Limit caps the batch.
	mustCreateTx(t, repo, user.ID, food.ID, "2026-08-12", "third", 300)
	pending, err = repo.PendingExportTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
