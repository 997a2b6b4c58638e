// Package profiler records a timing tree of template renders.
package profiler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Kinds of profiled entries.
const (
	KindRoot     = "root"
	KindTemplate = "template"
	KindLayout   = "layout"
	KindElement  = "element"
	KindCell     = "cell"
)

// Profile is a single timed entry.
type Profile struct {
	Kind     string
	Template string
	Name     string
	Start    time.Time
	Duration time.Duration
	Children []*Profile
}

// Profiler accumulates profiles for the lifetime of an environment.
type Profiler struct {
	mu   sync.Mutex
	root *Profile
	now  func() time.Time
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates an empty profiler.
func New(opts ...Option) *Profiler {
	p := &Profiler{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.root = &Profile{Kind: KindRoot, Name: "main", Start: p.now()}
	return p
}

type parentKey struct{}

// WithParent stores the profile that nested entries attach to.
func WithParent(ctx context.Context, parent *Profile) context.Context {
	return context.WithValue(ctx, parentKey{}, parent)
}

func parentFrom(ctx context.Context) *Profile {
	if ctx == nil {
		return nil
	}
	parent, _ := ctx.Value(parentKey{}).(*Profile)
	return parent
}

// Enter starts an entry below the parent found in ctx (or the root) and
// returns a context carrying the new entry.
func (p *Profiler) Enter(ctx context.Context, kind, template, name string) (context.Context, *Profile) {
	if ctx == nil {
		ctx = context.Background()
	}
	entry := &Profile{Kind: kind, Template: template, Name: name, Start: p.now()}

	p.mu.Lock()
	parent := parentFrom(ctx)
	if parent == nil {
		parent = p.root
	}
	parent.Children = append(parent.Children, entry)
	p.mu.Unlock()

	return WithParent(ctx, entry), entry
}

// Leave records the duration of entry.
func (p *Profiler) Leave(entry *Profile) {
	if entry == nil {
		return
	}
	p.mu.Lock()
	entry.Duration = p.now().Sub(entry.Start)
	p.mu.Unlock()
}

// Root returns a snapshot of the profile tree.
func (p *Profiler) Root() Profile {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.root.Duration = p.now().Sub(p.root.Start)
	return *clone(p.root)
}

// Reset discards every recorded entry.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root = &Profile{Kind: KindRoot, Name: "main", Start: p.now()}
}

// Dump writes the tree as indented text.
func (p *Profiler) Dump(w io.Writer) error {
	root := p.Root()
	return dump(w, &root, 0)
}

func dump(w io.Writer, node *Profile, depth int) error {
	label := node.Name
	if node.Template != "" && node.Template != node.Name {
		label = node.Template + "::" + node.Name
	}
	if _, err := fmt.Fprintf(w, "%s%s %s (%s)\n", strings.Repeat("  ", depth), node.Kind, label, node.Duration); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := dump(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func clone(node *Profile) *Profile {
	out := *node
	out.Children = make([]*Profile, 0, len(node.Children))
	for _, child := range node.Children {
		out.Children = append(out.Children, clone(child))
	}
	return &out
}
