package askengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested post or user does not exist.
var ErrNotFound = sql.ErrNoRows

// dateLayout sorts lexicographically in chronological order.
const dateLayout = "2006-01-02 15:04:05"

const postColumns = `id, parent_id, type, title, content, status, author_id, date, modified, tags`

// Store wraps a SQLite database holding users, questions and answers.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and applies pending migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while a writer commits; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	src, err := iofs.New(Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	// m.Close would close s.db through the driver, so only the source is released.
	defer src.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (Post, error) {
	var p Post
	var typ, status, date, modified, tags string
	if err := r.Scan(&p.ID, &p.ParentID, &typ, &p.Title, &p.Content, &status, &p.AuthorID, &date, &modified, &tags); err != nil {
		return Post{}, err
	}
	p.Type = PostType(typ)
	p.Status = PostStatus(status)
	p.Date = parseDate(date)
	p.Modified = parseDate(modified)
	p.Tags = ParseTags(tags)
	return p, nil
}

// scanPosts reads every row, publishing scheduled posts that are due.
func (s *Store) scanPosts(rows *sql.Rows) ([]Post, error) {
	defer rows.Close()
	now := s.now()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p.PublishDue(now))
	}
	return posts, rows.Err()
}

// publishedCond matches published posts and scheduled posts whose date has come.
func (s *Store) publishedCond() (string, []any) {
	return "(status = ? OR (status = ? AND date <= ?))",
		[]any{string(StatusPublish), string(StatusFuture), formatDate(s.now())}
}

func parseDate(s string) time.Time {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// GetPost returns a post by id regardless of status. A scheduled post
// whose date has come is returned as published.
func (s *Store) GetPost(ctx context.Context, id int64) (Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return Post{}, err
	}
	return p.PublishDue(s.now()), nil
}

// SavePost inserts p when p.ID is zero and updates it otherwise. It returns
// the post id. Tags are normalized to lowercase.
func (s *Store) SavePost(ctx context.Context, p Post) (int64, error) {
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	if p.Status == "" {
		p.Status = StatusPublish
	}
	tags := tagString(p.Tags)
	now := formatDate(s.now())
	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx, `INSERT INTO posts (parent_id, type, title, content, status, author_id, date, modified, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ParentID, string(p.Type), p.Title, p.Content, string(p.Status), p.AuthorID, formatDate(p.Date), now, tags)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET parent_id = ?, type = ?, title = ?, content = ?, status = ?, author_id = ?, date = ?, modified = ?, tags = ? WHERE id = ?`,
		p.ParentID, string(p.Type), p.Title, p.Content, string(p.Status), p.AuthorID, formatDate(p.Date), now, tags, p.ID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return p.ID, nil
}

// DeletePost removes a post and, for questions, its answers.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ? OR parent_id = ?`, id, id)
	return err
}

// ListAnswers returns the answers of a question, oldest first. Trashed answers are skipped.
func (s *Store) ListAnswers(ctx context.Context, questionID int64) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE type = ? AND parent_id = ? AND status != ? ORDER BY date ASC, id ASC`,
		string(PostTypeAnswer), questionID, string(StatusTrash))
	if err != nil {
		return nil, err
	}
	return s.scanPosts(rows)
}

// ListPublishedQuestions returns every published question, newest first.
func (s *Store) ListPublishedQuestions(ctx context.Context) ([]Post, error) {
	cond, params := s.publishedCond()
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE type = ? AND `+cond+` ORDER BY date DESC, id DESC`,
		append([]any{string(PostTypeQuestion)}, params...)...)
	if err != nil {
		return nil, err
	}
	return s.scanPosts(rows)
}

// ListTags returns a sorted, deduplicated slice of all tags of published questions.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	cond, params := s.publishedCond()
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM posts WHERE type = ? AND `+cond,
		append([]any{string(PostTypeQuestion)}, params...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// QueryQuestions runs the main question listing query for viewer.
func (s *Store) QueryQuestions(ctx context.Context, args QueryArgs, viewer User) (QuestionList, error) {
	if args.PerPage <= 0 {
		args.PerPage = 20
	}
	if args.Page <= 0 {
		args.Page = 1
	}
	where := []string{"type = ?"}
	params := []any{string(PostTypeQuestion)}

	switch {
	case viewer.IsModerator():
		where = append(where, "status != ?")
		params = append(params, string(StatusTrash))
	case !viewer.IsGuest():
		published, pubParams := s.publishedCond()
		where = append(where, "("+published+" OR (author_id = ? AND status != ?))")
		params = append(append(params, pubParams...), viewer.ID, string(StatusTrash))
	default:
		published, pubParams := s.publishedCond()
		where = append(where, published)
		params = append(params, pubParams...)
	}

	if q := strings.ToLower(strings.TrimSpace(args.Search)); q != "" {
		like := "%" + escapeLike(q) + "%"
		where = append(where, `(lower(title) LIKE ? ESCAPE '\' OR lower(content) LIKE ? ESCAPE '\')`)
		params = append(params, like, like)
	}

	if clause, tagParams := taxClause(args.TaxQuery); clause != "" {
		where = append(where, clause)
		params = append(params, tagParams...)
	}

	cond := strings.Join(where, " AND ")
	list := QuestionList{Page: args.Page, PerPage: args.PerPage, Args: args}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE `+cond, params...).Scan(&list.Total); err != nil {
		return QuestionList{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE `+cond+` ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		append(params, args.PerPage, (args.Page-1)*args.PerPage)...)
	if err != nil {
		return QuestionList{}, err
	}
	list.Questions, err = s.scanPosts(rows)
	if err != nil {
		return QuestionList{}, err
	}
	return list, nil
}

// taxClause builds the tag condition. Every term of every tag taxonomy is
// joined with the query's relation.
func taxClause(tq TaxQuery) (string, []any) {
	var parts []string
	var params []any
	for _, term := range tq.Terms {
		if term.Taxonomy != TaxonomyTag {
			continue
		}
		for _, t := range term.Terms {
			t = normalizeTag(t)
			if t == "" {
				continue
			}
			parts = append(parts, "instr(tags, ?) > 0")
			params = append(params, ","+t+",")
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " "+normalizeRelation(tq.Relation)+" ") + ")", params
}

func normalizeRelation(r string) string {
	if strings.EqualFold(strings.TrimSpace(r), "AND") {
		return "AND"
	}
	return "OR"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// CreateUser stores a new user with a bcrypt hash of password.
func (s *Store) CreateUser(ctx context.Context, login, displayName, password string, role Role) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, errors.New("login is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (login, display_name, role, password_hash) VALUES (?, ?, ?, ?)`,
		login, displayName, string(role), string(hash))
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Login: login, DisplayName: displayName, Role: role, PasswordHash: string(hash)}, nil
}

func scanUser(r rowScanner) (User, error) {
	var u User
	var role string
	if err := r.Scan(&u.ID, &u.Login, &u.DisplayName, &role, &u.PasswordHash); err != nil {
		return User{}, err
	}
	u.Role = ParseRole(role)
	return u, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT id, login, display_name, role, password_hash FROM users WHERE id = ?`, id))
}

// GetUserByLogin returns a user by login name.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT id, login, display_name, role, password_hash FROM users WHERE login = ?`, strings.TrimSpace(login)))
}

// Authenticate returns the user when login and password match.
func (s *Store) Authenticate(ctx context.Context, login, password string) (User, bool, error) {
	u, err := s.GetUserByLogin(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, false, nil
	}
	return u, true, nil
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func tagString(tags []string) string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	return "," + strings.Join(normalized, ",") + ","
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
