package tags

import (
	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

type cellNode struct {
	token  *pongo2.Token
	target string
	name   pongo2.IEvaluator
	with   withClause
}

func (n *cellNode) Execute(ectx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	view, ok := environment.CurrentView(ectx)
	if !ok {
		return ectx.OrigError(environment.ErrNoView, n.token)
	}
	name, err := n.name.Evaluate(ectx)
	if err != nil {
		return err
	}
	data, err := n.with.evaluate(ectx)
	if err != nil {
		return err
	}

	out, cellErr := view.Cell(environment.GoContext(ectx), name.String(), data, nil)
	if cellErr != nil {
		return callbackError(ectx, cellErr, n.token)
	}
	if n.target != "" {
		ectx.Private[n.target] = pongo2.AsSafeValue(out)
		return nil
	}
	if _, writeErr := writer.WriteString(out); writeErr != nil {
		return ectx.OrigError(writeErr, n.token)
	}
	return nil
}

func parseCell(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &cellNode{token: start}

	if arguments.PeekTypeN(0, pongo2.TokenIdentifier) != nil && arguments.PeekN(1, pongo2.TokenSymbol, "=") != nil {
		node.target = arguments.MatchType(pongo2.TokenIdentifier).Val
		arguments.Consume()
	}

	name, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.name = name

	if node.with, err = parseWith(arguments, false); err != nil {
		return nil, err
	}
	node.with.only = true
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("Malformed 'cell'-tag arguments.", nil)
	}
	return node, nil
}
