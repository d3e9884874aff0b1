package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/barely/pkg/task"
)

const (
	taskPrefix    = "task"
	projectPrefix = "project"
	columnPrefix  = "column"
	sequenceKey   = "meta-sequence"
)

// OpenDiskv creates a Persistence backed by diskv rooted at basePath. Each
// record is one JSON file under a directory per record kind.
func OpenDiskv(basePath string) (Persistence, error) {
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		now: time.Now,
	}
	if err := p.seedColumns(); err != nil {
		return nil, fmt.Errorf("store: seed columns: %w", err)
	}
	return p, nil
}

type persistence struct {
	d   *diskv.Diskv
	now func() time.Time
}

type sequence struct {
	Task    int64 `json:"task"`
	Project int64 `json:"project"`
}

func (p *persistence) seedColumns() error {
	for _, c := range task.DefaultColumns() {
		key := toKey(columnPrefix, c.ID)
		if p.d.Has(key) {
			continue
		}
		if err := p.write(key, c); err != nil {
			return err
		}
	}
	return nil
}

func (p *persistence) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

func (p *persistence) read(key string, v any) error {
	val, err := p.d.Read(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(val, v)
}

func (p *persistence) loadSequence() (sequence, error) {
	var seq sequence
	if !p.d.Has(sequenceKey) {
		return seq, nil
	}
	err := p.read(sequenceKey, &seq)
	return seq, err
}

func (p *persistence) Task(_ context.Context, id int64) (*task.Task, error) {
	key := toKey(taskPrefix, id)
	if !p.d.Has(key) {
		return nil, notFound("task", id)
	}
	t := &task.Task{}
	if err := p.read(key, t); err != nil {
		return nil, fmt.Errorf("store: read task %d: %w", id, err)
	}
	t.ID = id
	return t, nil
}

func (p *persistence) Tasks(ctx context.Context, f Filter) ([]*task.Task, error) {
	all := make([]*task.Task, 0)
	for key := range p.d.KeysPrefix(taskPrefix+"-", ctx.Done()) {
		id, err := keyID(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		t, err := p.Task(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		if f.Matches(t) {
			all = append(all, t)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortTasks(all)
	return all, nil
}

func (p *persistence) Insert(_ context.Context, t *task.Task) error {
	seq, err := p.loadSequence()
	if err != nil {
		return fmt.Errorf("store: load sequence: %w", err)
	}
	seq.Task++
	for p.d.Has(toKey(taskPrefix, seq.Task)) {
		seq.Task++
	}
	t.ID = seq.Task
	now := task.Stamp(p.now())
	if t.Created.IsZero() {
		t.Created = now
	}
	t.Updated = now
	if err := p.write(toKey(taskPrefix, t.ID), t); err != nil {
		return err
	}
	return p.write(sequenceKey, seq)
}

func (p *persistence) Restore(_ context.Context, t *task.Task) error {
	key := toKey(taskPrefix, t.ID)
	if t.ID <= 0 || p.d.Has(key) {
		return fmt.Errorf("task %d: %w", t.ID, ErrConflict)
	}
	if err := p.write(key, t); err != nil {
		return err
	}
	seq, err := p.loadSequence()
	if err != nil {
		return fmt.Errorf("store: load sequence: %w", err)
	}
	if t.ID > seq.Task {
		seq.Task = t.ID
		return p.write(sequenceKey, seq)
	}
	return nil
}

func (p *persistence) Update(_ context.Context, t *task.Task) error {
	key := toKey(taskPrefix, t.ID)
	if !p.d.Has(key) {
		return notFound("task", t.ID)
	}
	t.Updated = task.Stamp(p.now())
	return p.write(key, t)
}

func (p *persistence) Delete(_ context.Context, id int64) error {
	key := toKey(taskPrefix, id)
	if !p.d.Has(key) {
		return notFound("task", id)
	}
	return p.d.Erase(key)
}

func (p *persistence) Project(_ context.Context, id int64) (*task.Project, error) {
	key := toKey(projectPrefix, id)
	if !p.d.Has(key) {
		return nil, notFound("project", id)
	}
	pr := &task.Project{}
	if err := p.read(key, pr); err != nil {
		return nil, fmt.Errorf("store: read project %d: %w", id, err)
	}
	return pr, nil
}

func (p *persistence) Projects(ctx context.Context) ([]*task.Project, error) {
	all := make([]*task.Project, 0)
	for key := range p.d.KeysPrefix(projectPrefix+"-", ctx.Done()) {
		id, err := keyID(key)
		if err != nil {
			continue
		}
		pr, err := p.Project(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		all = append(all, pr)
	}
	sortProjects(all)
	return all, nil
}

func (p *persistence) InsertProject(ctx context.Context, pr *task.Project) error {
	name := strings.TrimSpace(pr.Name)
	if name == "" {
		return errors.New("store: project name required")
	}
	existing, err := p.Projects(ctx)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, name) {
			return fmt.Errorf("project %q: %w", name, ErrConflict)
		}
	}
	seq, err := p.loadSequence()
	if err != nil {
		return fmt.Errorf("store: load sequence: %w", err)
	}
	seq.Project++
	pr.ID = seq.Project
	pr.Name = name
	if pr.Created.IsZero() {
		pr.Created = task.Stamp(p.now())
	}
	if err := p.write(toKey(projectPrefix, pr.ID), pr); err != nil {
		return err
	}
	return p.write(sequenceKey, seq)
}

func (p *persistence) DeleteProject(ctx context.Context, id int64) error {
	key := toKey(projectPrefix, id)
	if !p.d.Has(key) {
		return notFound("project", id)
	}
	tasks, err := p.Tasks(ctx, Filter{ProjectID: &id})
	if err != nil {
		return err
	}
	for _, t := range tasks {
		t.ProjectID = nil
		if err := p.Update(ctx, t); err != nil {
			return err
		}
	}
	return p.d.Erase(key)
}

func (p *persistence) Column(_ context.Context, id int64) (*task.Column, error) {
	key := toKey(columnPrefix, id)
	if !p.d.Has(key) {
		return nil, notFound("column", id)
	}
	c := &task.Column{}
	if err := p.read(key, c); err != nil {
		return nil, fmt.Errorf("store: read column %d: %w", id, err)
	}
	return c, nil
}

func (p *persistence) Columns(ctx context.Context) ([]*task.Column, error) {
	all := make([]*task.Column, 0)
	for key := range p.d.KeysPrefix(columnPrefix+"-", ctx.Done()) {
		id, err := keyID(key)
		if err != nil {
			continue
		}
		c, err := p.Column(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		all = append(all, c)
	}
	sortColumns(all)
	return all, nil
}

func (p *persistence) Close() error {
	return nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `kind-id`
func toKey(kind string, id int64) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

func keyID(key string) (int64, error) {
	pk := keyToPathTransform(key)
	return strconv.ParseInt(pk.FileName, 10, 64)
}
