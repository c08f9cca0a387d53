package gen

// UniqueName tests name against filters and appends "_" until none of the
// filters report a collision.
func UniqueName(name string, filters ...func(string) bool) string {
	collides := func(name string) bool {
		for _, f := range filters {
			if f(name) {
				return true
			}
		}
		return false
	}
	for collides(name) {
		name += "_"
	}
	return name
}

// Scope represents a Go name scope: a package, file, interface, struct, or
// function body.
type Scope interface {
	// HasName reports whether name is declared in this scope or an
	// ancestor scope.
	HasName(name string) bool

	// DeclareName mangles name if necessary and declares it in this
	// scope, returning the name actually declared.
	DeclareName(name string) string
}

type scope struct {
	parent Scope
	names  map[string]bool
}

// NewScope returns a [Scope] nested under parent. If parent is nil, the
// reserved-word scope is used, so every name declared here avoids Go
// keywords and predeclared identifiers.
func NewScope(parent Scope) Scope {
	if parent == nil {
		parent = Reserved()
	}
	return &scope{parent: parent, names: make(map[string]bool)}
}

func (s *scope) HasName(name string) bool {
	return s.names[name] || s.parent.HasName(name)
}

func (s *scope) DeclareName(name string) string {
	name = UniqueName(name, s.HasName)
	s.names[name] = true
	return name
}

type reservedScope struct{}

// Reserved returns the [Scope] of Go keywords and predeclared identifiers.
// Its DeclareName method panics; it exists only as the root ancestor of
// every other scope.
func Reserved() Scope {
	return reservedScope{}
}

func (reservedScope) HasName(name string) bool {
	return IsReserved(name)
}

func (reservedScope) DeclareName(string) string {
	panic("gen: cannot declare a name in the reserved scope")
}

// IsReserved reports whether name is a Go keyword or predeclared identifier.
func IsReserved(name string) bool {
	return reservedWords[name]
}

var reservedWords = mapWords(
	// Keywords
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var",

	// Predeclared types
	"any", "bool", "byte", "comparable", "complex64", "complex128",
	"error", "float32", "float64", "int", "int8", "int16", "int32",
	"int64", "rune", "string", "uint", "uint8", "uint16", "uint32",
	"uint64", "uintptr",

	// Predeclared constants and zero value
	"true", "false", "iota", "nil",

	// Predeclared functions
	"append", "cap", "clear", "close", "complex", "copy", "delete",
	"imag", "len", "make", "max", "min", "new", "panic", "print",
	"println", "real", "recover",
)

// Initialisms holds common initialisms rendered in all caps by [CaseName],
// so e.g. the WIT name "http-client" renders as "HTTPClient", not "HttpClient".
var Initialisms = mapWords(
	"abi", "acl", "api", "ascii", "cabi", "cpu", "css", "cwd", "dns",
	"eof", "fifo", "guid", "html", "http", "https", "id", "io", "ip",
	"json", "mime", "posix", "qps", "ram", "rpc", "sql", "ssh", "tcp",
	"tls", "ttl", "tty", "udp", "ui", "uid", "uuid", "uri", "url",
	"utf8", "vm", "wasi", "wit", "xml",
)

func mapWords(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
