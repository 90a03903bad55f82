package cassandra

import "errors"
import "fmt"
import "reflect"
import "strconv"
import "strings"
import "unicode"

import "github.com/gocql/gocql"

var errAllowFiltering = errors.New("Cannot execute this query as it might involve data filtering " +
	"and thus may have unpredictable performance. If you want to execute this query despite the " +
	"performance unpredictability, use ALLOW FILTERING")

func tokenize(text string) ([]string, error) {
	var toks []string
	rs := []rune(text)
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '\'':
			j := i + 1
			for ; j < len(rs); j++ {
				if rs[j] == '\'' {
					if j+1 < len(rs) && rs[j+1] == '\'' {
						j++
						continue
					}
					break
				}
			}
			if j >= len(rs) {
				return nil, errors.New("unterminated string literal")
			}
			toks = append(toks, string(rs[i:j+1]))
			i = j + 1
		case isWord(r):
			j := i
			for j < len(rs) && isWord(rs[j]) {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		default:
			toks = append(toks, string(r))
			i++
		}
	}
	return toks, nil
}

type fakeParser struct {
	toks   []string
	pos    int
	params []interface{}
	nparam int
}

func (p *fakeParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *fakeParser) next() string {
	tok := p.peek()
	if tok != "" {
		p.pos++
	}
	return tok
}

func (p *fakeParser) done() bool {
	return p.pos >= len(p.toks) || (p.pos == len(p.toks)-1 && p.toks[p.pos] == ";")
}

func (p *fakeParser) skipRest() {
	p.pos = len(p.toks)
}

// accept consumes the given sequence of tokens, matched case insensitively, if and only if all of
// them come next.
func (p *fakeParser) accept(words ...string) bool {
	if p.pos+len(words) > len(p.toks) {
		return false
	}
	for i, w := range words {
		if !strings.EqualFold(p.toks[p.pos+i], w) {
			return false
		}
	}
	p.pos += len(words)
	return true
}

func (p *fakeParser) expect(words ...string) error {
	if !p.accept(words...) {
		return p.errorf("expected %q", strings.Join(words, " "))
	}
	return nil
}

func (p *fakeParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line 1: "+format+" near %q", append(args, p.peek())...)
}

func (p *fakeParser) ident() (string, error) {
	tok := p.peek()
	if tok == "" || !unicode.IsLetter([]rune(tok)[0]) {
		return "", p.errorf("expected identifier")
	}
	p.pos++
	return strings.ToLower(tok), nil
}

func (p *fakeParser) identList() ([]string, error) {
	var names []string
	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.accept(",") {
			return names, nil
		}
	}
}

// value consumes a bind marker or a literal and returns its Go value.
func (p *fakeParser) value() (interface{}, error) {
	tok := p.next()
	switch {
	case tok == "?":
		if p.nparam >= len(p.params) {
			return nil, errors.New("not enough values bound to placeholders")
		}
		v := p.params[p.nparam]
		p.nparam++
		return v, nil
	case strings.HasPrefix(tok, "'"):
		return strings.ReplaceAll(tok[1:len(tok)-1], "''", "'"), nil
	case strings.EqualFold(tok, "true"), strings.EqualFold(tok, "false"):
		return strings.EqualFold(tok, "true"), nil
	case tok != "" && unicode.IsDigit([]rune(tok)[0]):
		return strconv.ParseInt(tok, 10, 64)
	}
	p.pos--
	return nil, p.errorf("expected value")
}

func (f *Fake) execute(keyspace, text string, params []interface{}) (*resultSet, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &fakeParser{toks: toks, params: params}
	var rs *resultSet
	switch {
	case p.accept("CREATE", "KEYSPACE"):
		err = f.createKeyspace(p)
	case p.accept("CREATE", "TABLE"):
		err = f.createTable(keyspace, p)
	case p.accept("CREATE", "INDEX"):
		err = f.createIndex(keyspace, p)
	case p.accept("DROP", "KEYSPACE"):
		err = f.dropKeyspace(p)
	case p.accept("INSERT", "INTO"):
		err = f.insert(keyspace, p)
	case p.accept("UPDATE"):
		err = f.update(keyspace, p)
	case p.accept("DELETE", "FROM"):
		err = f.delete(keyspace, p)
	case p.accept("SELECT"):
		rs, err = f.selectRows(keyspace, p)
	default:
		err = p.errorf("unsupported statement")
	}
	if err == nil && !p.done() {
		err = p.errorf("unexpected input")
	}
	if err == nil && p.nparam != len(params) {
		err = fmt.Errorf("statement has %d placeholders but %d values were bound", p.nparam, len(params))
	}
	return rs, err
}

func (f *Fake) createKeyspace(p *fakeParser) error {
	ifNotExists := p.accept("IF", "NOT", "EXISTS")
	name, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.expect("WITH"); err != nil {
		return err
	}
	p.skipRest()
	if _, ok := f.keyspaces[name]; ok {
		if ifNotExists {
			return nil
		}
		return fmt.Errorf("Cannot add existing keyspace \"%s\"", name)
	}
	f.keyspaces[name] = &fakeKeyspace{tables: make(map[string]*fakeTable)}
	return nil
}

func (f *Fake) dropKeyspace(p *fakeParser) error {
	ifExists := p.accept("IF", "EXISTS")
	name, err := p.ident()
	if err != nil {
		return err
	}
	if _, ok := f.keyspaces[name]; !ok {
		if ifExists {
			return nil
		}
		return fmt.Errorf("Cannot drop non existing keyspace '%s'.", name)
	}
	delete(f.keyspaces, name)
	return nil
}

// tableName consumes an optionally keyspace-qualified table name.
func (f *Fake) tableName(keyspace string, p *fakeParser) (*fakeKeyspace, string, error) {
	name, err := p.ident()
	if err != nil {
		return nil, "", err
	}
	if p.accept(".") {
		keyspace = name
		if name, err = p.ident(); err != nil {
			return nil, "", err
		}
	}
	if keyspace == "" {
		return nil, "", errors.New("No keyspace has been specified. USE a keyspace, or explicitly " +
			"specify keyspace.tablename")
	}
	ks, ok := f.keyspaces[keyspace]
	if !ok {
		return nil, "", fmt.Errorf("Keyspace %s does not exist", keyspace)
	}
	return ks, name, nil
}

func (f *Fake) table(keyspace string, p *fakeParser) (*fakeTable, error) {
	ks, name, err := f.tableName(keyspace, p)
	if err != nil {
		return nil, err
	}
	t, ok := ks.tables[name]
	if !ok {
		return nil, fmt.Errorf("unconfigured table %s", name)
	}
	return t, nil
}

func (f *Fake) createTable(keyspace string, p *fakeParser) error {
	ifNotExists := p.accept("IF", "NOT", "EXISTS")
	ks, name, err := f.tableName(keyspace, p)
	if err != nil {
		return err
	}
	t := &fakeTable{types: make(map[string]gocql.TypeInfo), indexes: make(map[string]bool)}
	if err := p.expect("("); err != nil {
		return err
	}
	for {
		if p.accept("PRIMARY", "KEY") {
			if err := p.expect("("); err != nil {
				return err
			}
			keys, err := p.identList()
			if err != nil {
				return err
			}
			if len(keys) != 1 {
				return errors.New("fake cluster supports single-column primary keys only")
			}
			t.key = keys[0]
			if err := p.expect(")"); err != nil {
				return err
			}
		} else {
			col, err := p.ident()
			if err != nil {
				return err
			}
			typeName := p.next()
			info, ok := fakeTypeInfo(typeName)
			if !ok {
				return fmt.Errorf("unknown type %s", typeName)
			}
			t.columns = append(t.columns, col)
			t.types[col] = info
			if p.accept("PRIMARY", "KEY") {
				t.key = col
			}
		}
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	if p.accept("WITH") {
		p.skipRest()
	}
	if _, ok := t.types[t.key]; !ok {
		return fmt.Errorf("missing or unknown primary key %q", t.key)
	}
	if _, ok := ks.tables[name]; ok {
		if ifNotExists {
			return nil
		}
		return fmt.Errorf("Cannot add already existing table \"%s\"", name)
	}
	ks.tables[name] = t
	return nil
}

func (f *Fake) createIndex(keyspace string, p *fakeParser) error {
	ifNotExists := p.accept("IF", "NOT", "EXISTS")
	if !strings.EqualFold(p.peek(), "ON") {
		if _, err := p.ident(); err != nil {
			return err
		}
	}
	if err := p.expect("ON"); err != nil {
		return err
	}
	t, err := f.table(keyspace, p)
	if err != nil {
		return err
	}
	if err := p.expect("("); err != nil {
		return err
	}
	col, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	if _, ok := t.types[col]; !ok {
		return fmt.Errorf("Undefined column name %s", col)
	}
	if t.indexes[col] && !ifNotExists {
		return fmt.Errorf("Index on column %s already exists", col)
	}
	t.indexes[col] = true
	return nil
}

func (f *Fake) insert(keyspace string, p *fakeParser) error {
	t, err := f.table(keyspace, p)
	if err != nil {
		return err
	}
	if err := p.expect("("); err != nil {
		return err
	}
	cols, err := p.identList()
	if err != nil {
		return err
	}
	if err := p.expect(")", "VALUES", "("); err != nil {
		return err
	}
	values := make(fakeRow, len(cols))
	for i, col := range cols {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return err
			}
		}
		if values[col], err = p.marshalledValue(t, col); err != nil {
			return err
		}
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	key, ok := values[t.key]
	if !ok || key == nil {
		return fmt.Errorf("Some partition key parts are missing: %s", t.key)
	}
	row := t.upsert(key)
	for col, v := range values {
		row[col] = v
	}
	return nil
}

func (f *Fake) update(keyspace string, p *fakeParser) error {
	t, err := f.table(keyspace, p)
	if err != nil {
		return err
	}
	if err := p.expect("SET"); err != nil {
		return err
	}
	values := make(fakeRow)
	for {
		col, err := p.ident()
		if err != nil {
			return err
		}
		if err := p.expect("="); err != nil {
			return err
		}
		if values[col], err = p.marshalledValue(t, col); err != nil {
			return err
		}
		if !p.accept(",") {
			break
		}
	}
	key, err := p.keyCondition(t)
	if err != nil {
		return err
	}
	if _, ok := values[t.key]; ok {
		return fmt.Errorf("PRIMARY KEY part %s found in SET part", t.key)
	}
	row := t.upsert(key)
	for col, v := range values {
		row[col] = v
	}
	return nil
}

func (f *Fake) delete(keyspace string, p *fakeParser) error {
	t, err := f.table(keyspace, p)
	if err != nil {
		return err
	}
	key, err := p.keyCondition(t)
	if err != nil {
		return err
	}
	t.remove(key)
	return nil
}

func (f *Fake) selectRows(keyspace string, p *fakeParser) (*resultSet, error) {
	var cols []string
	count := false
	switch {
	case p.accept("*"):
	case p.accept("COUNT", "(", "*", ")"):
		count = true
	default:
		var err error
		if cols, err = p.identList(); err != nil {
			return nil, err
		}
	}
	if err := p.expect("FROM"); err != nil {
		return nil, err
	}
	t, err := f.table(keyspace, p)
	if err != nil {
		return nil, err
	}
	if cols == nil {
		cols = t.columns
	}
	for _, col := range cols {
		if _, ok := t.types[col]; !ok {
			return nil, fmt.Errorf("Undefined column name %s", col)
		}
	}
	var where []fakeCond
	if p.accept("WHERE") {
		if where, err = p.conditions(t); err != nil {
			return nil, err
		}
		for _, cond := range where {
			if cond.col != t.key && !t.indexes[cond.col] {
				return nil, errAllowFiltering
			}
		}
	}
	rs := t.query(cols, where)
	if count {
		info, _ := fakeTypeInfo("bigint")
		n, err := gocql.Marshal(info, int64(len(rs.rows)))
		if err != nil {
			return nil, err
		}
		rs = &resultSet{
			columns: []string{"count"},
			types:   []gocql.TypeInfo{info},
			rows:    [][][]byte{{n}},
		}
	}
	return rs, nil
}

// conditions consumes terms of a WHERE clause joined by AND. Each term is either "col = value" or
// "col IN" followed by a bound list or a parenthesized list of values.
func (p *fakeParser) conditions(t *fakeTable) ([]fakeCond, error) {
	var conds []fakeCond
	for {
		col, err := p.ident()
		if err != nil {
			return nil, err
		}
		cond := fakeCond{col: col}
		switch {
		case p.accept("="):
			v, err := p.marshalledValue(t, col)
			if err != nil {
				return nil, err
			}
			cond.values = [][]byte{v}
		case p.accept("IN", "("):
			for {
				v, err := p.marshalledValue(t, col)
				if err != nil {
					return nil, err
				}
				cond.values = append(cond.values, v)
				if !p.accept(",") {
					break
				}
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
		case p.accept("IN"):
			list, err := p.value()
			if err != nil {
				return nil, err
			}
			if cond.values, err = marshalList(t, col, list); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unsupported relation")
		}
		conds = append(conds, cond)
		if !p.accept("AND") {
			return conds, nil
		}
	}
}

// keyCondition consumes a WHERE clause that restricts the primary key to a single value.
func (p *fakeParser) keyCondition(t *fakeTable) ([]byte, error) {
	if err := p.expect("WHERE"); err != nil {
		return nil, err
	}
	conds, err := p.conditions(t)
	if err != nil {
		return nil, err
	}
	if len(conds) != 1 || conds[0].col != t.key || len(conds[0].values) != 1 {
		return nil, fmt.Errorf("Some partition key parts are missing: %s", t.key)
	}
	return conds[0].values[0], nil
}

func (p *fakeParser) marshalledValue(t *fakeTable, col string) ([]byte, error) {
	info, ok := t.types[col]
	if !ok {
		return nil, fmt.Errorf("Undefined column name %s", col)
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	return gocql.Marshal(info, v)
}

func marshalList(t *fakeTable, col string, list interface{}) ([][]byte, error) {
	info, ok := t.types[col]
	if !ok {
		return nil, fmt.Errorf("Undefined column name %s", col)
	}
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("can not marshal %T into list<%s>", list, info.Type())
	}
	values := make([][]byte, rv.Len())
	for i := range values {
		b, err := gocql.Marshal(info, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		values[i] = b
	}
	return values, nil
}
