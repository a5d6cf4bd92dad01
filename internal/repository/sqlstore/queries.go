package sqlstore

import (
	"fmt"
	"strings"

	"tracker/internal/repository"
	"tracker/internal/repository/migrations"
)

// Queries holds the statements of one dialect. Column order of every SELECT
// matches the Scan* functions.
type Queries struct {
	Dialect migrations.Dialect

	InsertTimeEntry string
	GetTimeEntry    string
	UpdateTimeEntry string
	DeleteTimeEntry string
	ListActive      string
	InsertProject   string
	GetProject      string
	ListProjects    string
	UpdateProject   string
	InsertClient    string
	GetClient       string
	ListClients     string
	InsertUser      string
	GetUser         string
	GetUserByName   string
	ListUsers       string

	timeEntryColumns string
	timeEntryOrder   string
}

// NewQueries renders the statements for d.
func NewQueries(d migrations.Dialect) *Queries {
	b := d.Bind
	q := &Queries{Dialect: d}

	q.timeEntryColumns = fmt.Sprintf("id, user_id, project_id, description, %s, %s, %s, duration",
		d.DateText("day"), d.TimeText("start"), d.TimeText("stop"))
	q.timeEntryOrder = " ORDER BY day ASC, start ASC, id ASC"

	q.InsertTimeEntry = fmt.Sprintf(`
	INSERT INTO time_entries (user_id, project_id, description, day, start, stop, duration)
	VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		b(1), b(2), b(3), d.DateArg(b(4)), d.TimeArg(b(5)), d.TimeArg(b(6)), b(7))

	q.GetTimeEntry = fmt.Sprintf(`
	SELECT %s
	FROM time_entries
	WHERE id = %s AND user_id = %s`, q.timeEntryColumns, b(1), b(2))

	q.UpdateTimeEntry = fmt.Sprintf(`
	UPDATE time_entries
	SET project_id = %s, description = %s, day = %s, start = %s, stop = %s, duration = %s
	WHERE id = %s AND user_id = %s`,
		b(1), b(2), d.DateArg(b(3)), d.TimeArg(b(4)), d.TimeArg(b(5)), b(6), b(7), b(8))

	q.DeleteTimeEntry = fmt.Sprintf(`DELETE FROM time_entries WHERE id = %s AND user_id = %s`, b(1), b(2))

	q.ListActive = fmt.Sprintf(`
	SELECT %s
	FROM time_entries
	WHERE user_id = %s AND stop IS NULL`, q.timeEntryColumns, b(1)) + q.timeEntryOrder

	const projectColumns = "id, user_id, client_id, name, notes, status, billing, amount, payment_type"

	q.InsertProject = fmt.Sprintf(`
	INSERT INTO projects (user_id, client_id, name, notes, status, billing, amount, payment_type)
	VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`, b(1), b(2), b(3), b(4), b(5), b(6), b(7), b(8))
	q.GetProject = fmt.Sprintf(`SELECT %s FROM projects WHERE id = %s AND user_id = %s`, projectColumns, b(1), b(2))
	q.ListProjects = fmt.Sprintf(`SELECT %s FROM projects WHERE user_id = %s ORDER BY name ASC, id ASC`, projectColumns, b(1))
	q.UpdateProject = fmt.Sprintf(`
	UPDATE projects
	SET client_id = %s, name = %s, notes = %s, status = %s, billing = %s, amount = %s, payment_type = %s
	WHERE id = %s AND user_id = %s`, b(1), b(2), b(3), b(4), b(5), b(6), b(7), b(8), b(9))

	q.InsertClient = fmt.Sprintf(`INSERT INTO clients (user_id, name) VALUES (%s, %s)`, b(1), b(2))
	q.GetClient = fmt.Sprintf(`SELECT id, user_id, name FROM clients WHERE id = %s AND user_id = %s`, b(1), b(2))
	q.ListClients = fmt.Sprintf(`SELECT id, user_id, name FROM clients WHERE user_id = %s ORDER BY name ASC, id ASC`, b(1))

	q.InsertUser = fmt.Sprintf(`INSERT INTO users (id, name) VALUES (%s, %s)`, b(1), b(2))
	q.GetUser = fmt.Sprintf(`SELECT id, name FROM users WHERE id = %s`, b(1))
	q.GetUserByName = fmt.Sprintf(`SELECT id, name FROM users WHERE name = %s`, b(1))
	q.ListUsers = `SELECT id, name FROM users ORDER BY name ASC`

	return q
}

// TimeEntryArgs returns the insert arguments of entry in statement order.
func TimeEntryArgs(entry *repository.TimeEntry) []interface{} {
	return []interface{}{
		entry.UserID,
		nullInt64(entry.ProjectID),
		entry.Description,
		entry.Day,
		entry.Start,
		nullString(entry.Stop),
		nullInt(entry.Duration),
	}
}

// UpdateTimeEntryArgs returns the update arguments of entry in statement order.
func UpdateTimeEntryArgs(entry *repository.TimeEntry) []interface{} {
	return []interface{}{
		nullInt64(entry.ProjectID),
		entry.Description,
		entry.Day,
		entry.Start,
		nullString(entry.Stop),
		nullInt(entry.Duration),
		entry.ID,
		entry.UserID,
	}
}

// ProjectArgs returns the insert arguments of project in statement order.
func ProjectArgs(p *repository.Project) []interface{} {
	return []interface{}{p.UserID, nullInt64(p.ClientID), p.Name, p.Notes, p.Status, p.Billing, p.Amount, p.PaymentType}
}

// UpdateProjectArgs returns the update arguments of project in statement order.
func UpdateProjectArgs(p *repository.Project) []interface{} {
	return []interface{}{nullInt64(p.ClientID), p.Name, p.Notes, p.Status, p.Billing, p.Amount, p.PaymentType, p.ID, p.UserID}
}

// Search builds the time entry search for userID.
func (q *Queries) Search(userID string, opts repository.SearchOptions) (string, []interface{}) {
	d := q.Dialect
	binder := migrations.NewBinder(d)

	conditions := []string{"user_id = " + binder.Add(userID)}
	if opts.Day != nil {
		conditions = append(conditions, "day = "+d.DateArg(binder.Add(*opts.Day)))
	}
	if opts.From != nil {
		conditions = append(conditions, "day >= "+d.DateArg(binder.Add(*opts.From)))
	}
	if opts.To != nil {
		conditions = append(conditions, "day <= "+d.DateArg(binder.Add(*opts.To)))
	}
	if opts.ProjectID != nil {
		conditions = append(conditions, "project_id = "+binder.Add(*opts.ProjectID))
	}
	if opts.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"project_id IN (SELECT id FROM projects WHERE client_id = %s AND user_id = %s)",
			binder.Add(*opts.ClientID), binder.Add(userID)))
	}
	if opts.ClosedOnly {
		conditions = append(conditions, "stop IS NOT NULL")
	}

	query := fmt.Sprintf(`
	SELECT %s
	FROM time_entries
	WHERE %s`, q.timeEntryColumns, strings.Join(conditions, " AND ")) + q.timeEntryOrder

	return query, binder.Args()
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
