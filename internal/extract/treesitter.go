//go:build cgo

package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"patcheck/internal/errors"
	"patcheck/internal/factset"
)

// IsAvailable returns whether fact extraction is available.
func IsAvailable() bool {
	return true
}

// Extractor derives fact sets from source files using tree-sitter.
type Extractor struct {
	parser *sitter.Parser
}

// NewExtractor creates a new fact extractor.
func NewExtractor() *Extractor {
	return &Extractor{parser: sitter.NewParser()}
}

// ExtractFile extracts a fact set from a single source file.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*factset.FactSet, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ExtractionFailed, "failed to read "+path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := LanguageFromExtension(ext)
	if !ok {
		return nil, errors.Newf(errors.ExtractionFailed, "unsupported file type %q", ext)
	}

	return e.ExtractSource(ctx, source, lang, path)
}

// ExtractSource extracts a fact set from source bytes. The name becomes
// the fact set's source label.
func (e *Extractor) ExtractSource(ctx context.Context, source []byte, lang Language, name string) (*factset.FactSet, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	e.parser.SetLanguage(tsLang)
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ExtractionFailed, "parse failed", err)
	}
	root := tree.RootNode()

	var decls []*decl
	switch lang {
	case LangJava:
		decls = collectJava(root, source)
	case LangPython:
		decls = collectPython(root, source)
	case LangJavaScript, LangTypeScript:
		decls = collectJS(root, source)
	case LangGo:
		decls = collectGo(root, source)
	}

	fs := factset.New(name)
	for _, d := range decls {
		fs.AddType(d.fact)
	}
	// Call resolution runs after all types are known so that edges only
	// point at declared types.
	for _, d := range decls {
		d.emitCalls(fs, source, lang)
	}
	return fs, nil
}

func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	default:
		return nil, errors.Newf(errors.ExtractionFailed, "unsupported language %q", lang)
	}
}

// decl is one declared type plus the context needed to resolve calls
// out of its member bodies.
type decl struct {
	fact   *factset.TypeFact
	vars   map[string]string // field and parameter names to type names
	bodies []memberBody
}

// memberBody is a member body pending call resolution. recv is the
// receiver variable name for Go methods, "" elsewhere.
type memberBody struct {
	member string
	recv   string
	node   *sitter.Node
}

func newDecl(name string) *decl {
	return &decl{
		fact: &factset.TypeFact{Name: name},
		vars: make(map[string]string),
	}
}

// addRef records a held reference. Self references count; singletons
// and chain handlers depend on them.
func (d *decl) addRef(typeName string) {
	if typeName == "" {
		return
	}
	for _, r := range d.fact.References {
		if r == typeName {
			return
		}
	}
	d.fact.References = append(d.fact.References, typeName)
}

func (d *decl) addSuper(typeName string) {
	if typeName == "" {
		return
	}
	for _, s := range d.fact.Supertypes {
		if s == typeName {
			return
		}
	}
	d.fact.Supertypes = append(d.fact.Supertypes, typeName)
}

func (d *decl) addMember(m factset.Member) {
	d.fact.Members = append(d.fact.Members, m)
}

// emitCalls walks each recorded member body in document order and adds
// the call edges it can resolve to declared types.
func (d *decl) emitCalls(fs *factset.FactSet, src []byte, lang Language) {
	for _, b := range d.bodies {
		walk(b.node, func(n *sitter.Node) {
			callee, member, kind, ok := resolveCall(n, src, lang, d, b, fs)
			if !ok {
				return
			}
			fs.AddCall(d.fact.Name, b.member, callee, member, kind)
		})
	}
}

func resolveCall(n *sitter.Node, src []byte, lang Language, d *decl, b memberBody, fs *factset.FactSet) (callee, member string, kind factset.CallKind, ok bool) {
	switch lang {
	case LangJava:
		return resolveJavaCall(n, src, d, fs)
	case LangPython:
		return resolvePythonCall(n, src, d, fs)
	case LangJavaScript, LangTypeScript:
		return resolveJSCall(n, src, d, fs)
	case LangGo:
		return resolveGoCall(n, src, d, b, fs)
	}
	return "", "", "", false
}

func declared(fs *factset.FactSet, name string) bool {
	_, ok := fs.Types[name]
	return ok
}

// --- Java ---

func collectJava(root *sitter.Node, src []byte) []*decl {
	var decls []*decl
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration":
			if d := javaClass(n, src); d != nil {
				decls = append(decls, d)
			}
		case "interface_declaration":
			if d := javaInterface(n, src); d != nil {
				decls = append(decls, d)
			}
		}
	})
	return decls
}

func javaClass(n *sitter.Node, src []byte) *decl {
	name := fieldText(n, "name", src)
	if name == "" {
		return nil
	}
	d := newDecl(name)
	d.fact.Abstract = javaModifiers(n, src, "abstract")

	if sc := n.ChildByFieldName("superclass"); sc != nil {
		for _, t := range typeIdents(sc, src) {
			d.addSuper(t)
		}
	}
	if ifc := n.ChildByFieldName("interfaces"); ifc != nil {
		for _, t := range typeIdents(ifc, src) {
			d.addSuper(t)
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return d
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "field_declaration":
			javaField(d, child, src)
		case "method_declaration":
			javaMethod(d, child, src, false)
		case "constructor_declaration":
			javaConstructor(d, child, src)
		}
	}
	return d
}

func javaInterface(n *sitter.Node, src []byte) *decl {
	name := fieldText(n, "name", src)
	if name == "" {
		return nil
	}
	d := newDecl(name)
	d.fact.Abstract = true

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == "extends_interfaces" {
			for _, t := range typeIdents(child, src) {
				d.addSuper(t)
			}
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return d
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child != nil && child.Type() == "method_declaration" {
			javaMethod(d, child, src, true)
		}
	}
	return d
}

func javaField(d *decl, n *sitter.Node, src []byte) {
	typeName := firstTypeIdent(n.ChildByFieldName("type"), src)
	for _, t := range typeIdents(n.ChildByFieldName("type"), src) {
		d.addRef(t)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == "variable_declarator" {
			fname := fieldText(child, "name", src)
			if fname != "" {
				d.vars[fname] = typeName
				d.addMember(factset.Member{
					Name:   fname,
					Kind:   factset.KindField,
					Public: !javaModifiers(n, src, "private") && !javaModifiers(n, src, "protected"),
				})
			}
		}
	}
}

func javaMethod(d *decl, n *sitter.Node, src []byte, iface bool) {
	name := fieldText(n, "name", src)
	if name == "" {
		return
	}
	ret := factset.ReturnValue
	if t := n.ChildByFieldName("type"); t == nil || t.Type() == "void_type" {
		ret = factset.ReturnNone
	}
	public := iface || (!javaModifiers(n, src, "private") && !javaModifiers(n, src, "protected"))

	d.addMember(factset.Member{
		Name:    name,
		Kind:    factset.KindMethod,
		Arity:   javaParams(d, n, src),
		Returns: ret,
		Public:  public,
	})
	if body := n.ChildByFieldName("body"); body != nil {
		d.bodies = append(d.bodies, memberBody{member: name, node: body})
	}
}

func javaConstructor(d *decl, n *sitter.Node, src []byte) {
	name := fieldText(n, "name", src)
	if name == "" {
		return
	}
	d.addMember(factset.Member{
		Name:   name,
		Kind:   factset.KindConstructor,
		Arity:  javaParams(d, n, src),
		Public: !javaModifiers(n, src, "private"),
	})
	if body := n.ChildByFieldName("body"); body != nil {
		d.bodies = append(d.bodies, memberBody{member: name, node: body})
	}
}

// javaParams counts formal parameters and records their declared types
// as held references.
func javaParams(d *decl, n *sitter.Node, src []byte) int {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		if p == nil {
			continue
		}
		if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
			continue
		}
		count++
		t := firstTypeIdent(p.ChildByFieldName("type"), src)
		if t != "" {
			d.addRef(t)
			if pname := fieldText(p, "name", src); pname != "" {
				d.vars[pname] = t
			}
		}
	}
	return count
}

func javaModifiers(n *sitter.Node, src []byte, want string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == "modifiers" {
			return strings.Contains(text(child, src), want)
		}
	}
	return false
}

func resolveJavaCall(n *sitter.Node, src []byte, d *decl, fs *factset.FactSet) (string, string, factset.CallKind, bool) {
	switch n.Type() {
	case "object_creation_expression":
		t := firstTypeIdent(n.ChildByFieldName("type"), src)
		if declared(fs, t) {
			return t, "", factset.CallConstruct, true
		}
	case "method_invocation":
		name := fieldText(n, "name", src)
		obj := n.ChildByFieldName("object")
		if obj == nil {
			// Unqualified call: a call on this when the method exists
			// on the enclosing type.
			if d.fact.HasMember(name) {
				return d.fact.Name, name, factset.CallInvoke, true
			}
			return "", "", "", false
		}
		switch obj.Type() {
		case "identifier":
			id := text(obj, src)
			if t, ok := d.vars[id]; ok && declared(fs, t) {
				return t, name, factset.CallInvoke, true
			}
			if declared(fs, id) {
				return id, name, factset.CallInvoke, true
			}
		case "field_access":
			inner := obj.ChildByFieldName("object")
			if inner != nil && inner.Type() == "this" {
				field := fieldText(obj, "field", src)
				if t, ok := d.vars[field]; ok && declared(fs, t) {
					return t, name, factset.CallInvoke, true
				}
			}
		case "this":
			if d.fact.HasMember(name) {
				return d.fact.Name, name, factset.CallInvoke, true
			}
		}
	}
	return "", "", "", false
}

// --- Python ---

func collectPython(root *sitter.Node, src []byte) []*decl {
	var decls []*decl
	walk(root, func(n *sitter.Node) {
		if n.Type() != "class_definition" {
			return
		}
		name := fieldText(n, "name", src)
		if name == "" {
			return
		}
		d := newDecl(name)

		if supers := n.ChildByFieldName("superclasses"); supers != nil {
			for i := 0; i < int(supers.NamedChildCount()); i++ {
				arg := supers.NamedChild(i)
				base := pythonBaseName(arg, src)
				switch base {
				case "", "object":
				case "ABC", "ABCMeta", "Protocol":
					d.fact.Abstract = true
				default:
					d.addSuper(base)
				}
			}
		}

		if body := n.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				child := body.NamedChild(i)
				if child == nil {
					continue
				}
				if child.Type() == "decorated_definition" {
					if abst := pythonDecorator(child, src); abst {
						d.fact.Abstract = true
					}
					child = child.ChildByFieldName("definition")
					if child == nil {
						continue
					}
				}
				if child.Type() == "function_definition" {
					pythonMethod(d, child, src)
				}
			}
		}
		decls = append(decls, d)
	})
	return decls
}

func pythonBaseName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return text(n, src)
	case "attribute":
		return fieldText(n, "attribute", src)
	case "keyword_argument":
		// metaclass=ABCMeta and friends
		return fieldText(n, "value", src)
	}
	return ""
}

func pythonDecorator(n *sitter.Node, src []byte) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == "decorator" &&
			strings.Contains(text(child, src), "abstractmethod") {
			return true
		}
	}
	return false
}

func pythonMethod(d *decl, n *sitter.Node, src []byte) {
	name := fieldText(n, "name", src)
	if name == "" {
		return
	}
	kind := factset.KindMethod
	if name == "__init__" {
		kind = factset.KindConstructor
	}

	arity := 0
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p == nil {
				continue
			}
			pname, ptype := pythonParam(p, src)
			if pname == "self" || pname == "cls" {
				continue
			}
			arity++
			if ptype != "" {
				d.addRef(ptype)
				d.vars[pname] = ptype
			}
		}
	}

	body := n.ChildByFieldName("body")
	ret := factset.ReturnNone
	if rt := n.ChildByFieldName("return_type"); rt != nil && text(rt, src) != "None" {
		ret = factset.ReturnValue
	} else if body != nil && pythonReturnsValue(body) {
		ret = factset.ReturnValue
	}

	d.addMember(factset.Member{
		Name:    name,
		Kind:    kind,
		Arity:   arity,
		Returns: ret,
		Public:  !strings.HasPrefix(name, "_") || name == "__init__",
	})
	if body != nil {
		pythonSelfAssignments(d, body, src)
		d.bodies = append(d.bodies, memberBody{member: name, node: body})
	}
}

func pythonParam(n *sitter.Node, src []byte) (name, typeName string) {
	switch n.Type() {
	case "identifier":
		return text(n, src), ""
	case "typed_parameter", "typed_default_parameter":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c != nil && c.Type() == "identifier" && name == "" {
				name = text(c, src)
			}
		}
		if t := n.ChildByFieldName("type"); t != nil {
			typeName = firstTypeIdent(t, src)
		}
		return name, typeName
	case "default_parameter":
		return fieldText(n, "name", src), ""
	}
	return "", ""
}

func pythonReturnsValue(body *sitter.Node) bool {
	found := false
	walk(body, func(n *sitter.Node) {
		if n.Type() == "return_statement" && n.NamedChildCount() > 0 {
			found = true
		}
	})
	return found
}

// pythonSelfAssignments records self.x = Class(...) as a held reference
// so that later self.x.method() calls resolve.
func pythonSelfAssignments(d *decl, body *sitter.Node, src []byte) {
	walk(body, func(n *sitter.Node) {
		if n.Type() != "assignment" {
			return
		}
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || left.Type() != "attribute" {
			return
		}
		obj := left.ChildByFieldName("object")
		if obj == nil || obj.Type() != "identifier" || text(obj, src) != "self" {
			return
		}
		attr := fieldText(left, "attribute", src)
		typeName := ""
		if right != nil {
			switch right.Type() {
			case "call":
				if fn := right.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
					typeName = text(fn, src)
				}
			case "identifier":
				if t, ok := d.vars[text(right, src)]; ok {
					typeName = t
				}
			}
		}
		if attr != "" && typeName != "" {
			d.vars[attr] = typeName
			d.addRef(typeName)
		}
	})
}

func resolvePythonCall(n *sitter.Node, src []byte, d *decl, fs *factset.FactSet) (string, string, factset.CallKind, bool) {
	if n.Type() != "call" {
		return "", "", "", false
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return "", "", "", false
	}
	switch fn.Type() {
	case "identifier":
		id := text(fn, src)
		if declared(fs, id) {
			return id, "", factset.CallConstruct, true
		}
	case "attribute":
		method := fieldText(fn, "attribute", src)
		obj := fn.ChildByFieldName("object")
		if obj == nil {
			return "", "", "", false
		}
		switch obj.Type() {
		case "identifier":
			id := text(obj, src)
			if id == "self" {
				if d.fact.HasMember(method) {
					return d.fact.Name, method, factset.CallInvoke, true
				}
				return "", "", "", false
			}
			if t, ok := d.vars[id]; ok && declared(fs, t) {
				return t, method, factset.CallInvoke, true
			}
			if declared(fs, id) {
				return id, method, factset.CallInvoke, true
			}
		case "attribute":
			inner := obj.ChildByFieldName("object")
			if inner != nil && inner.Type() == "identifier" && text(inner, src) == "self" {
				field := fieldText(obj, "attribute", src)
				if t, ok := d.vars[field]; ok && declared(fs, t) {
					return t, method, factset.CallInvoke, true
				}
			}
		}
	}
	return "", "", "", false
}

// --- JavaScript / TypeScript ---

func collectJS(root *sitter.Node, src []byte) []*decl {
	var decls []*decl
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration", "abstract_class_declaration":
			if d := jsClass(n, src); d != nil {
				decls = append(decls, d)
			}
		case "interface_declaration":
			if d := tsInterface(n, src); d != nil {
				decls = append(decls, d)
			}
		}
	})
	return decls
}

func jsClass(n *sitter.Node, src []byte) *decl {
	name := fieldText(n, "name", src)
	if name == "" {
		return nil
	}
	d := newDecl(name)
	d.fact.Abstract = n.Type() == "abstract_class_declaration"

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == "class_heritage" {
			for _, t := range heritageIdents(child, src) {
				d.addSuper(t)
			}
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return d
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "method_definition":
			jsMethod(d, child, src)
		case "public_field_definition", "field_definition":
			jsField(d, child, src)
		}
	}
	return d
}

func tsInterface(n *sitter.Node, src []byte) *decl {
	name := fieldText(n, "name", src)
	if name == "" {
		return nil
	}
	d := newDecl(name)
	d.fact.Abstract = true

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && (child.Type() == "extends_type_clause" || child.Type() == "extends_clause") {
			for _, t := range typeIdents(child, src) {
				d.addSuper(t)
			}
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return d
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "method_signature":
			name := fieldText(child, "name", src)
			if name == "" {
				continue
			}
			ret := factset.ReturnNone
			if rt := child.ChildByFieldName("return_type"); rt != nil && !strings.Contains(text(rt, src), "void") {
				ret = factset.ReturnValue
			}
			d.addMember(factset.Member{
				Name:    name,
				Kind:    factset.KindMethod,
				Arity:   jsParams(d, child, src),
				Returns: ret,
				Public:  true,
			})
		case "property_signature":
			pname := fieldText(child, "name", src)
			if t := child.ChildByFieldName("type"); t != nil {
				typeName := firstTypeIdent(t, src)
				d.addRef(typeName)
				if pname != "" {
					d.vars[pname] = typeName
				}
			}
			if pname != "" {
				d.addMember(factset.Member{Name: pname, Kind: factset.KindField, Public: true})
			}
		}
	}
	return d
}

func jsMethod(d *decl, n *sitter.Node, src []byte) {
	name := fieldText(n, "name", src)
	if name == "" {
		return
	}
	kind := factset.KindMethod
	if name == "constructor" {
		kind = factset.KindConstructor
	}

	body := n.ChildByFieldName("body")
	ret := factset.ReturnNone
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		if !strings.Contains(text(rt, src), "void") {
			ret = factset.ReturnValue
		}
	} else if body != nil && jsReturnsValue(body) {
		ret = factset.ReturnValue
	}

	modifiers := text(n, src)
	if idx := strings.Index(modifiers, name); idx > 0 {
		modifiers = modifiers[:idx]
	}
	public := !strings.Contains(modifiers, "private") &&
		!strings.Contains(modifiers, "protected") &&
		!strings.HasPrefix(name, "#") && !strings.HasPrefix(name, "_")

	d.addMember(factset.Member{
		Name:    name,
		Kind:    kind,
		Arity:   jsParams(d, n, src),
		Returns: ret,
		Public:  public,
	})
	if body != nil {
		jsThisAssignments(d, body, src)
		d.bodies = append(d.bodies, memberBody{member: name, node: body})
	}
}

func jsField(d *decl, n *sitter.Node, src []byte) {
	name := fieldText(n, "name", src)
	if name == "" {
		return
	}
	if t := n.ChildByFieldName("type"); t != nil {
		typeName := firstTypeIdent(t, src)
		d.addRef(typeName)
		d.vars[name] = typeName
	}
	if v := n.ChildByFieldName("value"); v != nil && v.Type() == "new_expression" {
		typeName := firstTypeIdent(v.ChildByFieldName("constructor"), src)
		if typeName != "" {
			d.addRef(typeName)
			d.vars[name] = typeName
		}
	}
	d.addMember(factset.Member{
		Name:   name,
		Kind:   factset.KindField,
		Public: !strings.HasPrefix(name, "#") && !strings.HasPrefix(name, "_"),
	})
}

func jsParams(d *decl, n *sitter.Node, src []byte) int {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p == nil || p.Type() == "comment" {
			continue
		}
		count++
		if t := p.ChildByFieldName("type"); t != nil {
			typeName := firstTypeIdent(t, src)
			d.addRef(typeName)
			if pat := p.ChildByFieldName("pattern"); pat != nil && pat.Type() == "identifier" {
				d.vars[text(pat, src)] = typeName
			}
		}
	}
	return count
}

func jsReturnsValue(body *sitter.Node) bool {
	found := false
	walk(body, func(n *sitter.Node) {
		if n.Type() == "return_statement" && n.NamedChildCount() > 0 {
			found = true
		}
	})
	return found
}

// jsThisAssignments records this.x = new Class() as a held reference.
func jsThisAssignments(d *decl, body *sitter.Node, src []byte) {
	walk(body, func(n *sitter.Node) {
		if n.Type() != "assignment_expression" {
			return
		}
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || left.Type() != "member_expression" {
			return
		}
		obj := left.ChildByFieldName("object")
		if obj == nil || obj.Type() != "this" {
			return
		}
		prop := fieldText(left, "property", src)
		typeName := ""
		if right != nil {
			switch right.Type() {
			case "new_expression":
				typeName = firstTypeIdent(right.ChildByFieldName("constructor"), src)
			case "identifier":
				if t, ok := d.vars[text(right, src)]; ok {
					typeName = t
				}
			}
		}
		if prop != "" && typeName != "" {
			d.vars[prop] = typeName
			d.addRef(typeName)
		}
	})
}

func heritageIdents(n *sitter.Node, src []byte) []string {
	var out []string
	walk(n, func(c *sitter.Node) {
		switch c.Type() {
		case "identifier", "type_identifier":
			out = append(out, text(c, src))
		}
	})
	return out
}

func resolveJSCall(n *sitter.Node, src []byte, d *decl, fs *factset.FactSet) (string, string, factset.CallKind, bool) {
	switch n.Type() {
	case "new_expression":
		t := firstTypeIdent(n.ChildByFieldName("constructor"), src)
		if declared(fs, t) {
			return t, "", factset.CallConstruct, true
		}
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Type() != "member_expression" {
			return "", "", "", false
		}
		method := fieldText(fn, "property", src)
		obj := fn.ChildByFieldName("object")
		if obj == nil {
			return "", "", "", false
		}
		switch obj.Type() {
		case "this":
			if d.fact.HasMember(method) {
				return d.fact.Name, method, factset.CallInvoke, true
			}
		case "identifier":
			id := text(obj, src)
			if t, ok := d.vars[id]; ok && declared(fs, t) {
				return t, method, factset.CallInvoke, true
			}
			if declared(fs, id) {
				return id, method, factset.CallInvoke, true
			}
		case "member_expression":
			inner := obj.ChildByFieldName("object")
			if inner != nil && inner.Type() == "this" {
				field := fieldText(obj, "property", src)
				if t, ok := d.vars[field]; ok && declared(fs, t) {
					return t, method, factset.CallInvoke, true
				}
			}
		}
	}
	return "", "", "", false
}

// --- Go ---

func collectGo(root *sitter.Node, src []byte) []*decl {
	byName := make(map[string]*decl)
	var order []string

	walk(root, func(n *sitter.Node) {
		if n.Type() != "type_spec" {
			return
		}
		name := fieldText(n, "name", src)
		typ := n.ChildByFieldName("type")
		if name == "" || typ == nil {
			return
		}
		d := newDecl(name)
		switch typ.Type() {
		case "struct_type":
			goStruct(d, typ, src)
		case "interface_type":
			d.fact.Abstract = true
			goInterface(d, typ, src)
		}
		byName[name] = d
		order = append(order, name)
	})

	// Methods are declared at top level with receivers.
	walk(root, func(n *sitter.Node) {
		if n.Type() != "method_declaration" {
			return
		}
		recvName, recvType := goReceiver(n, src)
		d, ok := byName[recvType]
		if !ok {
			return
		}
		name := fieldText(n, "name", src)
		if name == "" {
			return
		}
		ret := factset.ReturnNone
		if n.ChildByFieldName("result") != nil {
			ret = factset.ReturnValue
		}
		d.addMember(factset.Member{
			Name:    name,
			Kind:    factset.KindMethod,
			Arity:   goParamCount(n.ChildByFieldName("parameters")),
			Returns: ret,
			Public:  exportedGoName(name),
		})
		if body := n.ChildByFieldName("body"); body != nil {
			d.bodies = append(d.bodies, memberBody{member: name, recv: recvName, node: body})
		}
	})

	decls := make([]*decl, 0, len(order))
	for _, name := range order {
		decls = append(decls, byName[name])
	}
	return decls
}

func goStruct(d *decl, typ *sitter.Node, src []byte) {
	list := childOfType(typ, "field_declaration_list")
	if list == nil {
		return
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		field := list.NamedChild(i)
		if field == nil || field.Type() != "field_declaration" {
			continue
		}
		typeName := firstTypeIdent(field.ChildByFieldName("type"), src)
		named := false
		for j := 0; j < int(field.ChildCount()); j++ {
			c := field.Child(j)
			if c != nil && c.Type() == "field_identifier" {
				named = true
				fname := text(c, src)
				d.vars[fname] = typeName
				d.addRef(typeName)
				d.addMember(factset.Member{
					Name:   fname,
					Kind:   factset.KindField,
					Public: exportedGoName(fname),
				})
			}
		}
		if !named && typeName != "" {
			// Embedded field: Go's rendition of a supertype edge.
			d.addSuper(typeName)
		}
	}
}

func goInterface(d *decl, typ *sitter.Node, src []byte) {
	for i := 0; i < int(typ.NamedChildCount()); i++ {
		c := typ.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "method_spec", "method_elem":
			name := fieldText(c, "name", src)
			if name == "" {
				continue
			}
			ret := factset.ReturnNone
			if c.ChildByFieldName("result") != nil {
				ret = factset.ReturnValue
			}
			d.addMember(factset.Member{
				Name:    name,
				Kind:    factset.KindMethod,
				Arity:   goParamCount(c.ChildByFieldName("parameters")),
				Returns: ret,
				Public:  exportedGoName(name),
			})
		case "type_identifier":
			d.addSuper(text(c, src))
		case "interface_type_name", "type_elem":
			if t := firstTypeIdent(c, src); t != "" {
				d.addSuper(t)
			}
		}
	}
}

func goReceiver(n *sitter.Node, src []byte) (name, typeName string) {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return "", ""
	}
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		p := recv.NamedChild(i)
		if p == nil || p.Type() != "parameter_declaration" {
			continue
		}
		typeName = firstTypeIdent(p.ChildByFieldName("type"), src)
		name = fieldText(p, "name", src)
		return name, typeName
	}
	return "", ""
}

func goParamCount(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Type() {
		case "parameter_declaration", "variadic_parameter_declaration":
			// One declaration can name several parameters.
			names := 0
			for j := 0; j < int(p.ChildCount()); j++ {
				c := p.Child(j)
				if c != nil && c.Type() == "identifier" {
					names++
				}
			}
			if names == 0 {
				names = 1
			}
			count += names
		}
	}
	return count
}

func resolveGoCall(n *sitter.Node, src []byte, d *decl, b memberBody, fs *factset.FactSet) (string, string, factset.CallKind, bool) {
	switch n.Type() {
	case "composite_literal":
		t := firstTypeIdent(n.ChildByFieldName("type"), src)
		if declared(fs, t) {
			return t, "", factset.CallConstruct, true
		}
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Type() != "selector_expression" {
			return "", "", "", false
		}
		method := fieldText(fn, "field", src)
		operand := fn.ChildByFieldName("operand")
		if operand == nil {
			return "", "", "", false
		}
		switch operand.Type() {
		case "identifier":
			id := text(operand, src)
			if id == b.recv {
				if d.fact.HasMember(method) {
					return d.fact.Name, method, factset.CallInvoke, true
				}
				return "", "", "", false
			}
			if t, ok := d.vars[id]; ok && declared(fs, t) {
				return t, method, factset.CallInvoke, true
			}
		case "selector_expression":
			inner := operand.ChildByFieldName("operand")
			if inner != nil && inner.Type() == "identifier" && text(inner, src) == b.recv {
				field := fieldText(operand, "field", src)
				if t, ok := d.vars[field]; ok && declared(fs, t) {
					return t, method, factset.CallInvoke, true
				}
			}
		}
	}
	return "", "", "", false
}

// --- shared helpers ---

func walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

func text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	if n == nil {
		return ""
	}
	return text(n.ChildByFieldName(field), src)
}

func childOfType(n *sitter.Node, nodeType string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.Type() == nodeType {
			return c
		}
	}
	return nil
}

// firstTypeIdent returns the first type-like identifier under a node,
// unwrapping pointers, generics, and qualifiers.
func firstTypeIdent(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "type_identifier", "identifier":
		return text(n, src)
	}
	found := ""
	walk(n, func(c *sitter.Node) {
		if found != "" {
			return
		}
		switch c.Type() {
		case "type_identifier", "identifier":
			found = text(c, src)
		}
	})
	return found
}

// typeIdents collects every type identifier under a node, in order,
// deduplicated. Generic arguments count; List<Shape> references both.
func typeIdents(n *sitter.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	walk(n, func(c *sitter.Node) {
		if c.Type() != "type_identifier" {
			return
		}
		t := text(c, src)
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	})
	return out
}

func exportedGoName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
