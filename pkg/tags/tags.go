// Package tags adds the element and cell block tags to pongo2.
//
//	{% element "Dir/name" [with key=expr ...] [only] %}
//	{% cell "Name[::action]" [with key=expr ...] %}
//	{% cell var = "Name[::action]" [with key=expr ...] %}
//
// Both tags call back into the view bound to the render context.
package tags

import (
	"errors"
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Tag names.
const (
	TagElement = "element"
	TagCell    = "cell"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the tags in pongo2's process-wide tag registry. It is safe
// to call more than once.
func Register() error {
	registerOnce.Do(func() {
		if err := pongo2.RegisterTag(TagElement, parseElement); err != nil {
			registerErr = fmt.Errorf("tags: register %q: %w", TagElement, err)
			return
		}
		if err := pongo2.RegisterTag(TagCell, parseCell); err != nil {
			registerErr = fmt.Errorf("tags: register %q: %w", TagCell, err)
		}
	})
	return registerErr
}

type withClause struct {
	pairs map[string]pongo2.IEvaluator
	only  bool
}

func parseWith(arguments *pongo2.Parser, allowOnly bool) (withClause, *pongo2.Error) {
	clause := withClause{pairs: make(map[string]pongo2.IEvaluator)}
	if arguments.Match(pongo2.TokenIdentifier, "with") != nil {
		for arguments.Remaining() > 0 {
			if allowOnly && arguments.Peek(pongo2.TokenIdentifier, "only") != nil {
				break
			}
			key := arguments.MatchType(pongo2.TokenIdentifier)
			if key == nil {
				return clause, arguments.Error("Expected an identifier.", nil)
			}
			if arguments.Match(pongo2.TokenSymbol, "=") == nil {
				return clause, arguments.Error("Expected '='.", nil)
			}
			value, err := arguments.ParseExpression()
			if err != nil {
				return clause, err
			}
			clause.pairs[key.Val] = value
		}
	}
	if allowOnly && arguments.Match(pongo2.TokenIdentifier, "only") != nil {
		clause.only = true
	}
	return clause, nil
}

// engineMetaKey is the entry pongo2 adds to every private context.
const engineMetaKey = "pongo2"

// evaluate builds the data passed to the callee. Unless only is set the
// template's local variables are included.
func (c withClause) evaluate(ectx *pongo2.ExecutionContext) (map[string]any, *pongo2.Error) {
	data := make(map[string]any, len(c.pairs))
	if !c.only {
		for key, value := range ectx.Private {
			if key == engineMetaKey {
				continue
			}
			data[key] = unwrap(value)
		}
	}
	for key, expr := range c.pairs {
		value, err := expr.Evaluate(ectx)
		if err != nil {
			return nil, err
		}
		data[key] = value.Interface()
	}
	return data, nil
}

func unwrap(value any) any {
	if v, ok := value.(*pongo2.Value); ok {
		return v.Interface()
	}
	return value
}

// callbackError keeps nested engine errors intact and attaches the tag
// position to everything else.
func callbackError(ectx *pongo2.ExecutionContext, err error, token *pongo2.Token) *pongo2.Error {
	var engineErr *pongo2.Error
	if errors.As(err, &engineErr) {
		return engineErr
	}
	return ectx.OrigError(err, token)
}
