package tags

import (
	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

type elementNode struct {
	token *pongo2.Token
	name  pongo2.IEvaluator
	with  withClause
}

func (n *elementNode) Execute(ectx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	view, ok := environment.CurrentView(ectx)
	if !ok {
		return ectx.OrigError(environment.ErrNoView, n.token)
	}
	name, err := n.name.Evaluate(ectx)
	if err != nil {
		return err
	}
	if name.String() == "" {
		return ectx.Error("Element name evaluated to an empty string.", n.token)
	}
	data, err := n.with.evaluate(ectx)
	if err != nil {
		return err
	}

	out, renderErr := view.Element(environment.GoContext(ectx), name.String(), data, nil)
	if renderErr != nil {
		return callbackError(ectx, renderErr, n.token)
	}
	if _, writeErr := writer.WriteString(out); writeErr != nil {
		return ectx.OrigError(writeErr, n.token)
	}
	return nil
}

func parseElement(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &elementNode{token: start}

	name, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.name = name

	if node.with, err = parseWith(arguments, true); err != nil {
		return nil, err
	}
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("Malformed 'element'-tag arguments.", nil)
	}
	return node, nil
}
