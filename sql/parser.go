package sql

// Grammar (EBNF), deliberately a small, closed dialect — spec.md treats the
// grammar as an opaque external collaborator, so this parser only needs to
// be rich enough to drive the engine end to end, not to be a general SQL
// front end.
//
// query       := select_query | diff_query
//
// select_query := SELECT select_list FROM relation where? order_by? limit?
// select_list  := '*' | select_item (',' select_item)*
// select_item  := operand (AS id)?
//
// relation     := primary_relation (join_tail)*
// join_tail    := NATURAL JOIN primary_relation
//               | (INNER)? JOIN primary_relation (ON id | USING '(' id_list ')')
// primary_relation := id (AS id)?
//               | '(' relation ')' (AS id)?
//               | '(' select_query ')' AS id
//
// diff_query   := DIFF '(' select_query ',' select_query ')' diff_params outer_clauses
//               | SPLIT id (AS id)? WHERE expr diff_params outer_clauses
// diff_params  := ON ('*' | '(' id_list ')')
//                 WITH RATIO id MAXORDER number MINSUPPORT number MINRATIO number THREADS number
// outer_clauses := (SELECT select_list)? where_order_limit
//
// where       := WHERE expr
// order_by    := ORDER BY id (ASC|DESC)?
// limit       := LIMIT number
//
// expr        := NOT expr | expr AND expr | expr OR expr | comparison | '(' expr ')'
// comparison  := operand cmp_op operand
// cmp_op      := '=' | '!=' | '<' | '<=' | '>' | '>=' | IS DISTINCT FROM
// operand     := id ('.' id)? | id '(' id ')' | STR | NUMBER | NULL

import "fmt"

type Parser struct {
	l *Lexer
}

func NewParser(source string) *Parser {
	return &Parser{l: NewLexer(source)}
}

func (p *Parser) pos() CodeInfo { return CodeInfo{Pos: p.l.Cursor} }

func (p *Parser) err(format string, args ...interface{}) error {
	if p.l.Token == TkError {
		return fmt.Errorf("lex error at %s: %s", p.pos(), p.l.Lexeme.Text)
	}
	return fmt.Errorf("parse error at %s: %s", p.pos(), fmt.Sprintf(format, args...))
}

func (p *Parser) expect(tk int) error {
	if p.l.Token != tk {
		return p.err("expected %s, got %s", TokenName(tk), TokenName(p.l.Token))
	}
	p.l.Next()
	return nil
}

func (p *Parser) tryConsume(tk int) bool {
	if p.l.Token == tk {
		p.l.Next()
		return true
	}
	return false
}

// Parse parses a single query body (SELECT, DIFF or SPLIT).
func (p *Parser) Parse() (QueryBody, error) {
	switch p.l.Token {
	case TkSelect:
		return p.parseSelectQuery()
	case TkDiff:
		return p.parseDiffSubqueries()
	case TkSplit:
		return p.parseDiffSplit()
	default:
		return nil, p.err("expected SELECT, DIFF or SPLIT, got %s", TokenName(p.l.Token))
	}
}

func (p *Parser) parseSelectQuery() (*QuerySpec, error) {
	info := p.pos()
	if err := p.expect(TkSelect); err != nil {
		return nil, err
	}
	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TkFrom); err != nil {
		return nil, err
	}
	rel, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	q := &QuerySpec{CodeInfo: info, From: rel, Select: items}
	if err := p.parseWhereOrderLimit(&q.Where, &q.OrderBy, &q.Limit); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *Parser) parseWhereOrderLimit(where *Expr, orderBy **OrderBy, limit **int) error {
	if p.l.Token == TkWhere {
		p.l.Next()
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		*where = e
	}
	if p.l.Token == TkOrder {
		p.l.Next()
		if err := p.expect(TkBy); err != nil {
			return err
		}
		if p.l.Token != TkId {
			return p.err("expected column name after ORDER BY, got %s", TokenName(p.l.Token))
		}
		col := p.l.Lexeme.Text
		p.l.Next()
		desc := false
		if p.l.Token == TkAsc {
			p.l.Next()
		} else if p.l.Token == TkDesc {
			desc = true
			p.l.Next()
		}
		if p.l.Token == TkComma {
			return p.err("ORDER BY supports a single column only")
		}
		*orderBy = &OrderBy{Column: col, Descending: desc}
	}
	if p.l.Token == TkLimit {
		p.l.Next()
		if p.l.Token != TkNumber {
			return p.err("expected a number after LIMIT, got %s", TokenName(p.l.Token))
		}
		n := int(p.l.Lexeme.Real)
		p.l.Next()
		*limit = &n
	}
	return nil
}

func (p *Parser) parseSelectList() ([]SelectItem, error) {
	if p.l.Token == TkStar {
		p.l.Next()
		return []SelectItem{&AllColumns{}}, nil
	}
	var out []SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if !p.tryConsume(TkComma) {
			break
		}
	}
	return out, nil
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	e, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.tryConsume(TkAs) {
		if p.l.Token != TkId {
			return nil, p.err("expected alias identifier after AS, got %s", TokenName(p.l.Token))
		}
		alias = p.l.Lexeme.Text
		p.l.Next()
	}
	return &SingleColumn{Expr: e, Alias: alias}, nil
}

func (p *Parser) parseRelation() (Relation, error) {
	rel, err := p.parsePrimaryRelation()
	if err != nil {
		return nil, err
	}
	for {
		info := p.pos()
		if p.l.Token == TkNatural {
			p.l.Next()
			if err := p.expect(TkJoin); err != nil {
				return nil, err
			}
			right, err := p.parsePrimaryRelation()
			if err != nil {
				return nil, err
			}
			rel = &Join{CodeInfo: info, Left: rel, Right: right, Criteria: &NaturalCriteria{}}
			continue
		}
		if p.l.Token == TkInner || p.l.Token == TkJoin {
			p.tryConsume(TkInner)
			if err := p.expect(TkJoin); err != nil {
				return nil, err
			}
			right, err := p.parsePrimaryRelation()
			if err != nil {
				return nil, err
			}
			crit, err := p.parseJoinCriteria()
			if err != nil {
				return nil, err
			}
			rel = &Join{CodeInfo: info, Left: rel, Right: right, Criteria: crit}
			continue
		}
		break
	}
	return rel, nil
}

func (p *Parser) parseJoinCriteria() (JoinCriteria, error) {
	switch p.l.Token {
	case TkOn:
		p.l.Next()
		if p.l.Token != TkId {
			return nil, p.err("expected column name after ON, got %s", TokenName(p.l.Token))
		}
		name := p.l.Lexeme.Text
		p.l.Next()
		return &OnCriteria{Column: name}, nil
	case TkUsing:
		p.l.Next()
		if err := p.expect(TkLPar); err != nil {
			return nil, err
		}
		names, err := p.parseIdList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TkRPar); err != nil {
			return nil, err
		}
		return &UsingCriteria{Columns: names}, nil
	default:
		return nil, p.err("expected ON or USING after JOIN, got %s", TokenName(p.l.Token))
	}
}

func (p *Parser) parseIdList() ([]string, error) {
	var out []string
	for {
		if p.l.Token != TkId {
			return nil, p.err("expected identifier, got %s", TokenName(p.l.Token))
		}
		out = append(out, p.l.Lexeme.Text)
		p.l.Next()
		if !p.tryConsume(TkComma) {
			break
		}
	}
	return out, nil
}

func (p *Parser) parsePrimaryRelation() (Relation, error) {
	info := p.pos()
	if p.l.Token == TkLPar {
		p.l.Next()
		if p.l.Token == TkSelect {
			sub, err := p.parseSelectQuery()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TkRPar); err != nil {
				return nil, err
			}
			if err := p.expect(TkAs); err != nil {
				return nil, err
			}
			if p.l.Token != TkId {
				return nil, p.err("expected subquery alias, got %s", TokenName(p.l.Token))
			}
			alias := p.l.Lexeme.Text
			p.l.Next()
			return &Subquery{CodeInfo: info, Query: sub, Alias: alias}, nil
		}
		rel, err := p.parseRelation()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TkRPar); err != nil {
			return nil, err
		}
		alias := ""
		if p.tryConsume(TkAs) {
			if p.l.Token != TkId {
				return nil, p.err("expected alias identifier, got %s", TokenName(p.l.Token))
			}
			alias = p.l.Lexeme.Text
			p.l.Next()
		}
		if alias == "" {
			return rel, nil
		}
		return &AliasedRelation{CodeInfo: info, Relation: rel, Alias: alias}, nil
	}

	if p.l.Token != TkId {
		return nil, p.err("expected table name, got %s", TokenName(p.l.Token))
	}
	name := p.l.Lexeme.Text
	p.l.Next()
	tr := &TableRef{CodeInfo: info, Name: name}
	if p.tryConsume(TkAs) {
		if p.l.Token != TkId {
			return nil, p.err("expected alias identifier, got %s", TokenName(p.l.Token))
		}
		alias := p.l.Lexeme.Text
		p.l.Next()
		return &AliasedRelation{CodeInfo: info, Relation: tr, Alias: alias}, nil
	}
	return tr, nil
}

// --- DIFF / SPLIT -----------------------------------------------------------

func (p *Parser) parseDiffSubqueries() (*DiffQuerySpec, error) {
	info := p.pos()
	if err := p.expect(TkDiff); err != nil {
		return nil, err
	}
	if err := p.expect(TkLPar); err != nil {
		return nil, err
	}
	outlier, err := p.parseSelectQuery()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TkComma); err != nil {
		return nil, err
	}
	inlier, err := p.parseSelectQuery()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TkRPar); err != nil {
		return nil, err
	}

	d := &DiffQuerySpec{
		CodeInfo:   info,
		Subqueries: &DiffSubqueries{Outlier: outlier, Inlier: inlier},
	}
	if err := p.parseDiffParams(d); err != nil {
		return nil, err
	}
	if err := p.parseDiffOuterClauses(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseDiffSplit() (*DiffQuerySpec, error) {
	info := p.pos()
	if err := p.expect(TkSplit); err != nil {
		return nil, err
	}
	rel, err := p.parsePrimaryRelation()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TkWhere); err != nil {
		return nil, err
	}
	predicate, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	d := &DiffQuerySpec{
		CodeInfo: info,
		Split:    &DiffSplit{Relation: rel, Predicate: predicate},
	}
	if err := p.parseDiffParams(d); err != nil {
		return nil, err
	}
	if err := p.parseDiffOuterClauses(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseDiffParams(d *DiffQuerySpec) error {
	if err := p.expect(TkOn); err != nil {
		return err
	}
	if p.l.Token == TkStar {
		p.l.Next()
		d.OnWildcard = true
	} else {
		if err := p.expect(TkLPar); err != nil {
			return err
		}
		names, err := p.parseIdList()
		if err != nil {
			return err
		}
		if err := p.expect(TkRPar); err != nil {
			return err
		}
		d.On = names
	}

	if err := p.expect(TkWith); err != nil {
		return err
	}
	if err := p.expect(TkRatio); err != nil {
		return err
	}
	if p.l.Token != TkId {
		return p.err("expected ratio metric name, got %s", TokenName(p.l.Token))
	}
	d.RatioMetric = p.l.Lexeme.Text
	p.l.Next()

	if err := p.expect(TkMaxOrder); err != nil {
		return err
	}
	n, err := p.parseIntLiteral()
	if err != nil {
		return err
	}
	d.MaxOrder = n

	if err := p.expect(TkMinSupport); err != nil {
		return err
	}
	f, err := p.parseFloatLiteral()
	if err != nil {
		return err
	}
	d.MinSupport = f

	if err := p.expect(TkMinRatio); err != nil {
		return err
	}
	f, err = p.parseFloatLiteral()
	if err != nil {
		return err
	}
	d.MinRatio = f

	if err := p.expect(TkThreads); err != nil {
		return err
	}
	n, err = p.parseIntLiteral()
	if err != nil {
		return err
	}
	d.Threads = n
	return nil
}

func (p *Parser) parseDiffOuterClauses(d *DiffQuerySpec) error {
	if p.l.Token == TkSelect {
		p.l.Next()
		items, err := p.parseSelectList()
		if err != nil {
			return err
		}
		d.Select = items
	}
	return p.parseWhereOrderLimit(new(Expr), &d.OrderBy, &d.Limit)
}

func (p *Parser) parseIntLiteral() (int, error) {
	if p.l.Token != TkNumber {
		return 0, p.err("expected a number, got %s", TokenName(p.l.Token))
	}
	v := int(p.l.Lexeme.Real)
	p.l.Next()
	return v, nil
}

func (p *Parser) parseFloatLiteral() (float64, error) {
	if p.l.Token != TkNumber {
		return 0, p.err("expected a number, got %s", TokenName(p.l.Token))
	}
	v := p.l.Lexeme.Real
	p.l.Next()
	return v, nil
}

// --- expressions -------------------------------------------------------------

func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	info := p.pos()
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.l.Token == TkOr {
		p.l.Next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalBinary{CodeInfo: info, Op: LogicalOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	info := p.pos()
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.l.Token == TkAnd {
		p.l.Next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &LogicalBinary{CodeInfo: info, Op: LogicalAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	info := p.pos()
	if p.l.Token == TkNot {
		p.l.Next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Not{CodeInfo: info, Operand: operand}, nil
	}
	return p.parseParenOrComparison()
}

func (p *Parser) parseParenOrComparison() (Expr, error) {
	if p.l.Token == TkLPar {
		p.l.Next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TkRPar); err != nil {
			return nil, err
		}
		return e, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	info := p.pos()
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseCmpOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Comparison{CodeInfo: info, Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseCmpOp() (int, error) {
	switch p.l.Token {
	case TkEq:
		p.l.Next()
		return CmpEq, nil
	case TkNe:
		p.l.Next()
		return CmpNe, nil
	case TkLt:
		p.l.Next()
		return CmpLt, nil
	case TkLe:
		p.l.Next()
		return CmpLe, nil
	case TkGt:
		p.l.Next()
		return CmpGt, nil
	case TkGe:
		p.l.Next()
		return CmpGe, nil
	case TkIs:
		p.l.Next()
		if err := p.expect(TkDistinct); err != nil {
			return 0, err
		}
		if err := p.expect(TkFrom); err != nil {
			return 0, err
		}
		return CmpIsDistinctFrom, nil
	default:
		return 0, p.err("expected a comparison operator, got %s", TokenName(p.l.Token))
	}
}

// parseOperand parses a comparison/select-list leaf: identifier, a table-
// qualified dereference, a UDF call, or a literal (spec.md §4.2/§4.7).
func (p *Parser) parseOperand() (Expr, error) {
	info := p.pos()
	switch p.l.Token {
	case TkStr:
		v := p.l.Lexeme.Text
		p.l.Next()
		return &StringLiteral{CodeInfo: info, Value: v}, nil
	case TkNumber:
		v := p.l.Lexeme.Real
		p.l.Next()
		return &DoubleLiteral{CodeInfo: info, Value: v}, nil
	case TkNull:
		p.l.Next()
		return &NullLiteral{CodeInfo: info}, nil
	case TkId:
		name := p.l.Lexeme.Text
		p.l.Next()
		if p.l.Token == TkLPar {
			p.l.Next()
			if p.l.Token != TkId {
				return nil, p.err("expected a column name as UDF argument, got %s", TokenName(p.l.Token))
			}
			arg := p.l.Lexeme.Text
			p.l.Next()
			if err := p.expect(TkRPar); err != nil {
				return nil, err
			}
			return &FunctionCall{CodeInfo: info, Name: name, Arg: arg}, nil
		}
		if p.l.Token == TkDot {
			p.l.Next()
			if p.l.Token != TkId {
				return nil, p.err("expected a column name after '.', got %s", TokenName(p.l.Token))
			}
			col := p.l.Lexeme.Text
			p.l.Next()
			return &Dereference{CodeInfo: info, Qualifier: name, Name: col}, nil
		}
		return &Identifier{CodeInfo: info, Name: name}, nil
	default:
		return nil, p.err("expected an operand, got %s", TokenName(p.l.Token))
	}
}
