package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// GitHubOptions configures the GitHub Projects adapter.
type GitHubOptions struct {
	// Owner is the user or organization that owns the project ("@me" works).
	Owner string
	// Project is the project number shown in the project URL.
	Project int
	// GHPath is the gh executable. Defaults to "gh".
	GHPath string
	// StatusField is the single-select field holding the column.
	StatusField string
	// Timeout bounds every gh invocation.
	Timeout time.Duration
	// Limit caps how many items List fetches.
	Limit int
}

// Runner executes a command and returns its stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// GitHub is a Client backed by GitHub Projects (v2) through the gh CLI.
//
// Only draft items can have their title or body edited. Title and body
// changes to linked issues and pull requests are logged and dropped; their
// column still moves.
type GitHub struct {
	opts   GitHubOptions
	run    Runner
	logger *slog.Logger

	mu         sync.Mutex
	contentIDs map[string]string
	itemTypes  map[string]string
	meta       *projectMeta
}

type projectMeta struct {
	projectID string
	fieldID   string
	options   map[string]string
}

// NewGitHub returns an adapter that shells out to gh.
func NewGitHub(opts GitHubOptions, logger *slog.Logger) *GitHub {
	if opts.GHPath == "" {
		opts.GHPath = "gh"
	}
	if opts.StatusField == "" {
		opts.StatusField = "Status"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &GitHub{
		opts:       opts,
		run:        execRunner,
		logger:     logger,
		contentIDs: make(map[string]string),
		itemTypes:  make(map[string]string),
	}
}

// WithRunner replaces the process runner.
func (g *GitHub) WithRunner(r Runner) *GitHub {
	g.run = r
	return g
}

type ghItemList struct {
	Items      []json.RawMessage `json:"items"`
	TotalCount int               `json:"totalCount"`
}

type ghItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"content"`
}

// decodeItem reads one item-list entry. gh writes each project field under
// its lowercased name, so the column is looked up by the status field.
func (g *GitHub) decodeItem(raw json.RawMessage) (ghItem, string, error) {
	var it ghItem
	if err := json.Unmarshal(raw, &it); err != nil {
		return ghItem{}, "", err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ghItem{}, "", err
	}
	var column string
	if v, ok := fields[strings.ToLower(g.opts.StatusField)]; ok {
		// Unset or non-text fields leave the column empty.
		_ = json.Unmarshal(v, &column)
	}
	return it, column, nil
}

// List fetches the project's items in board order.
func (g *GitHub) List(ctx context.Context) ([]RemoteItem, error) {
	out, err := g.gh(ctx, "list", "",
		"project", "item-list", g.projectNumber(),
		"--owner", g.opts.Owner,
		"--format", "json",
		"--limit", strconv.Itoa(g.opts.Limit),
	)
	if err != nil {
		return nil, err
	}

	var list ghItemList
	if err := json.Unmarshal(out, &list); err != nil {
		return nil, &UnavailableError{Op: "list", Err: fmt.Errorf("decode gh output: %w", err)}
	}
	if list.TotalCount > len(list.Items) {
		g.logger.Warn("board has more items than the list limit",
			"total", list.TotalCount, "limit", g.opts.Limit)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	items := make([]RemoteItem, 0, len(list.Items))
	for _, raw := range list.Items {
		it, column, err := g.decodeItem(raw)
		if err != nil {
			return nil, &UnavailableError{Op: "list", Err: fmt.Errorf("decode gh item: %w", err)}
		}
		title := it.Title
		if title == "" {
			title = it.Content.Title
		}
		items = append(items, RemoteItem{
			ID:     it.ID,
			Title:  title,
			Body:   it.Content.Body,
			Column: column,
		})
		g.contentIDs[it.ID] = it.Content.ID
		g.itemTypes[it.ID] = it.Content.Type
	}
	return items, nil
}

// Create adds a draft item to the project.
func (g *GitHub) Create(ctx context.Context, title, body string) (RemoteItem, error) {
	out, err := g.gh(ctx, "create", "",
		"project", "item-create", g.projectNumber(),
		"--owner", g.opts.Owner,
		"--title", title,
		"--body", body,
		"--format", "json",
	)
	if err != nil {
		return RemoteItem{}, err
	}

	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.Unmarshal(out, &created); err != nil {
		return RemoteItem{}, &UnavailableError{Op: "create", Err: fmt.Errorf("decode gh output: %w", err)}
	}
	if created.ID == "" {
		return RemoteItem{}, &UnavailableError{Op: "create", Err: errors.New("gh returned no item id")}
	}

	g.mu.Lock()
	g.itemTypes[created.ID] = "DraftIssue"
	g.mu.Unlock()

	return RemoteItem{ID: created.ID, Title: title, Body: body}, nil
}

// Update edits the draft content and/or moves the item between columns.
func (g *GitHub) Update(ctx context.Context, id string, fields Fields) error {
	if fields.Title != nil || fields.Body != nil {
		err := g.editContent(ctx, id, fields)
		var linked *linkedItemError
		switch {
		case errors.As(err, &linked):
			g.logger.Warn("skipping title and body edit", "id", id, "type", linked.itemType)
		case err != nil:
			return err
		}
	}
	if fields.Column != nil {
		if err := g.moveToColumn(ctx, id, *fields.Column); err != nil {
			return err
		}
	}
	return nil
}

func (g *GitHub) editContent(ctx context.Context, id string, fields Fields) error {
	g.mu.Lock()
	contentID, known := g.contentIDs[id]
	itemType := g.itemTypes[id]
	g.mu.Unlock()

	if !known || contentID == "" {
		// Items created in this run are not in the cache yet.
		if _, err := g.List(ctx); err != nil {
			return err
		}
		g.mu.Lock()
		contentID, known = g.contentIDs[id]
		itemType = g.itemTypes[id]
		g.mu.Unlock()
		if !known {
			return &NotFoundError{ID: id}
		}
	}
	if itemType != "" && itemType != "DraftIssue" {
		return &linkedItemError{itemType: itemType}
	}

	args := []string{"project", "item-edit", "--id", contentID}
	if fields.Title != nil {
		args = append(args, "--title", *fields.Title)
	}
	if fields.Body != nil {
		args = append(args, "--body", *fields.Body)
	}
	_, err := g.gh(ctx, "update", id, args...)
	return err
}

type linkedItemError struct {
	itemType string
}

func (e *linkedItemError) Error() string {
	return fmt.Sprintf("item is a linked %s; only draft items can be edited", e.itemType)
}

func (g *GitHub) moveToColumn(ctx context.Context, id, column string) error {
	meta, err := g.projectMeta(ctx)
	if err != nil {
		return err
	}
	optionID, ok := meta.options[column]
	if !ok {
		return &UnavailableError{Op: "update", ID: id, Err: fmt.Errorf("field %q has no option %q", g.opts.StatusField, column)}
	}

	_, err = g.gh(ctx, "update", id,
		"project", "item-edit",
		"--id", id,
		"--project-id", meta.projectID,
		"--field-id", meta.fieldID,
		"--single-select-option-id", optionID,
	)
	return err
}

func (g *GitHub) projectMeta(ctx context.Context) (*projectMeta, error) {
	g.mu.Lock()
	if g.meta != nil {
		m := g.meta
		g.mu.Unlock()
		return m, nil
	}
	g.mu.Unlock()

	out, err := g.gh(ctx, "view", "", "project", "view", g.projectNumber(), "--owner", g.opts.Owner, "--format", "json")
	if err != nil {
		return nil, err
	}
	var project struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(out, &project); err != nil {
		return nil, &UnavailableError{Op: "view", Err: fmt.Errorf("decode gh output: %w", err)}
	}

	out, err = g.gh(ctx, "field-list", "", "project", "field-list", g.projectNumber(), "--owner", g.opts.Owner, "--format", "json")
	if err != nil {
		return nil, err
	}
	var fields struct {
		Fields []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Options []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"options"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(out, &fields); err != nil {
		return nil, &UnavailableError{Op: "field-list", Err: fmt.Errorf("decode gh output: %w", err)}
	}

	meta := &projectMeta{projectID: project.ID, options: make(map[string]string)}
	for _, f := range fields.Fields {
		if f.Name != g.opts.StatusField {
			continue
		}
		meta.fieldID = f.ID
		for _, o := range f.Options {
			meta.options[o.Name] = o.ID
		}
	}
	if meta.fieldID == "" {
		return nil, &UnavailableError{Op: "field-list", Err: fmt.Errorf("project has no field named %q", g.opts.StatusField)}
	}

	g.mu.Lock()
	g.meta = meta
	g.mu.Unlock()
	return meta, nil
}

func (g *GitHub) projectNumber() string {
	return strconv.Itoa(g.opts.Project)
}

// gh runs one gh invocation under the configured timeout and classifies
// failures into UnavailableError and NotFoundError.
func (g *GitHub) gh(ctx context.Context, op, id string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, err := g.run(ctx, g.opts.GHPath, args...)
	g.logger.Debug("gh", "op", op, "id", id, "args", strings.Join(args[:min(3, len(args))], " "),
		"duration", time.Since(start), "err", err)
	if err == nil {
		return stdout, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &UnavailableError{Op: op, ID: id, Err: fmt.Errorf("timed out after %s", g.opts.Timeout)}
	}

	msg := strings.TrimSpace(string(stderr))
	if id != "" && isNotFoundMessage(msg) {
		return nil, &NotFoundError{ID: id}
	}
	if msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return nil, &UnavailableError{Op: op, ID: id, Err: err}
}

func isNotFoundMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "could not resolve to a node") ||
		strings.Contains(lower, "not found")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
