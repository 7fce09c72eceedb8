package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/mattn/go-sqlite3"
)

// Tx is a ledger transaction handed out by Store.Update and Store.View.
type Tx struct {
	tx *sql.Tx
}

type scanner interface {
	Scan(dest ...any) error
}

// Students

func (t *Tx) CreateStudent(ctx context.Context, s Student) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO students (name, color, cash_balance, bank_balance) VALUES (?, ?, ?, ?)`,
		s.Name, s.Color, s.CashBalance, s.BankBalance)
	if err != nil {
		return 0, fmt.Errorf("insert student: %w", err)
	}
	return res.LastInsertId()
}

func (t *Tx) GetStudent(ctx context.Context, id int64) (Student, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, name, color, cash_balance, bank_balance
		FROM students
		WHERE id = ?`, id)

	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, fmt.Errorf("student %d: %w", id, ErrNotFound)
		}
		return Student{}, err
	}
	return s, nil
}

// ListStudents returns every student in insertion order.
func (t *Tx) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, color, cash_balance, bank_balance
		FROM students
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetBalances overwrites both balances of a student.
func (t *Tx) SetBalances(ctx context.Context, id int64, cash, bank float64) error {
	if !finite(cash) || cash < 0 || !finite(bank) || bank < 0 {
		return invalidf("student %d: balances must be >= 0, got cash=%v bank=%v", id, cash, bank)
	}
	res, err := t.tx.ExecContext(ctx,
		`UPDATE students SET cash_balance = ?, bank_balance = ? WHERE id = ?`, cash, bank, id)
	if err != nil {
		return fmt.Errorf("update balances: %w", err)
	}
	return requireRow(res, "student", id)
}

// ApplyBankInterest multiplies every bank balance by factor.
func (t *Tx) ApplyBankInterest(ctx context.Context, factor float64) error {
	if !finite(factor) || factor < 0 {
		return invalidf("interest factor must be >= 0, got %v", factor)
	}
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE students SET bank_balance = bank_balance * ?`, factor); err != nil {
		return fmt.Errorf("apply interest: %w", err)
	}
	return nil
}

func scanStudent(row scanner) (Student, error) {
	var s Student
	if err := row.Scan(&s.ID, &s.Name, &s.Color, &s.CashBalance, &s.BankBalance); err != nil {
		return Student{}, err
	}
	if err := s.Validate(); err != nil {
		return Student{}, malformed("student", err)
	}
	return s, nil
}

// Holdings

func (t *Tx) CreateHolding(ctx context.Context, h Holding) (int64, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO investments (student_id, symbol, amount, cost_basis) VALUES (?, ?, ?, ?)`,
		h.StudentID, h.Symbol, h.Amount, h.CostBasis)
	if err != nil {
		return 0, fmt.Errorf("insert holding: %w", err)
	}
	return res.LastInsertId()
}

// GetHolding returns the lot only when it belongs to studentID.
func (t *Tx) GetHolding(ctx context.Context, id, studentID int64) (Holding, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, student_id, symbol, amount, cost_basis
		FROM investments
		WHERE id = ? AND student_id = ?`, id, studentID)

	h, err := scanHolding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Holding{}, fmt.Errorf("holding %d of student %d: %w", id, studentID, ErrNotFound)
		}
		return Holding{}, err
	}
	return h, nil
}

func (t *Tx) DeleteHolding(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM investments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	return requireRow(res, "holding", id)
}

// ListHoldings returns the lots of one student, or of everyone when
// studentID is 0.
func (t *Tx) ListHoldings(ctx context.Context, studentID int64) ([]Holding, error) {
	query := `
		SELECT id, student_id, symbol, amount, cost_basis
		FROM investments`
	var args []any
	if studentID != 0 {
		query += ` WHERE student_id = ?`
		args = append(args, studentID)
	}
	query += ` ORDER BY id ASC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	var out []Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanHolding(row scanner) (Holding, error) {
	var h Holding
	if err := row.Scan(&h.ID, &h.StudentID, &h.Symbol, &h.Amount, &h.CostBasis); err != nil {
		return Holding{}, err
	}
	if err := h.Validate(); err != nil {
		return Holding{}, malformed("holding", err)
	}
	return h, nil
}

// Assets

// InsertAsset adds a new asset and fails with ErrDuplicateSymbol when the
// symbol already exists.
func (t *Tx) InsertAsset(ctx context.Context, a Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO prices (symbol, name, price) VALUES (?, ?, ?)`, a.Symbol, a.Name, a.Price)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("asset %s: %w", a.Symbol, ErrDuplicateSymbol)
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// UpsertAsset inserts the asset or resets name and price of an existing one.
func (t *Tx) UpsertAsset(ctx context.Context, a Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO prices (symbol, name, price) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET name = excluded.name, price = excluded.price`,
		a.Symbol, a.Name, a.Price); err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	return nil
}

func (t *Tx) GetAsset(ctx context.Context, symbol string) (Asset, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT symbol, name, price FROM prices WHERE symbol = ?`, symbol)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Asset{}, fmt.Errorf("asset %s: %w", symbol, ErrNotFound)
		}
		return Asset{}, err
	}
	return a, nil
}

func (t *Tx) SetPrice(ctx context.Context, symbol string, price float64) error {
	if err := (Asset{Symbol: symbol, Price: price}).Validate(); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE prices SET price = ? WHERE symbol = ?`, price, symbol)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("asset %s: %w", symbol, ErrNotFound)
	}
	return nil
}

// ListAssets returns every asset in insertion order.
func (t *Tx) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT symbol, name, price FROM prices ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAsset(row scanner) (Asset, error) {
	var (
		a    Asset
		name sql.NullString
	)
	if err := row.Scan(&a.Symbol, &name, &a.Price); err != nil {
		return Asset{}, err
	}
	// Rows written before the name column existed carry NULL.
	a.Name = name.String
	if !name.Valid || a.Name == "" {
		a.Name = a.Symbol
	}
	if err := a.Validate(); err != nil {
		return Asset{}, malformed("asset", err)
	}
	return a, nil
}

// History

func (t *Tx) AppendPricePoint(ctx context.Context, p PricePoint) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO price_history (symbol, week_number, price) VALUES (?, ?, ?)`,
		p.Symbol, p.Week, p.Price)
	if err != nil {
		return 0, fmt.Errorf("insert price point: %w", err)
	}
	return res.LastInsertId()
}

// ListPriceHistory returns all price points ordered by week, then by
// insertion.
func (t *Tx) ListPriceHistory(ctx context.Context) ([]PricePoint, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, symbol, week_number, price
		FROM price_history
		ORDER BY week_number ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var out []PricePoint
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Week, &p.Price); err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, malformed("price history", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tx) AppendSnapshot(ctx context.Context, s Snapshot) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO weekly_snapshots (student_id, week_number, total_value, profit_loss, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		s.StudentID, s.Week, s.TotalValue, s.ProfitLoss, s.Timestamp.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return res.LastInsertId()
}

// ListSnapshots returns all weekly snapshots ordered by week, then by
// insertion.
func (t *Tx) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, student_id, week_number, total_value, profit_loss, timestamp
		FROM weekly_snapshots
		ORDER BY week_number ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.StudentID, &s.Week, &s.TotalValue, &s.ProfitLoss, &s.Timestamp); err != nil {
			return nil, err
		}
		if err := s.Validate(); err != nil {
			return nil, malformed("snapshot", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// State

// CurrentWeek reads the week counter. A store that was never initialized
// reports week 0.
func (t *Tx) CurrentWeek(ctx context.Context) (int, error) {
	var raw string
	err := t.tx.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, currentWeekKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read current week: %w", err)
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 0 {
		return 0, malformed("current_week", fmt.Errorf("value %q", raw))
	}
	return week, nil
}

func (t *Tx) SetCurrentWeek(ctx context.Context, week int) error {
	if week < 0 {
		return invalidf("week must be >= 0, got %d", week)
	}
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		currentWeekKey, strconv.Itoa(week)); err != nil {
		return fmt.Errorf("write current week: %w", err)
	}
	return nil
}

// Clear deletes students, holdings and all history. Assets and the week
// counter are left for the caller to reset.
func (t *Tx) Clear(ctx context.Context) error {
	for _, table := range []string{"weekly_snapshots", "investments", "students", "price_history"} {
		if _, err := t.tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}
