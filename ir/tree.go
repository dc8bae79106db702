package ir

// Access controls visibility of a member or method.
type Access int

const (
	Public Access = iota
	Private
)

// Program is the root of the program tree: every import and compilation
// unit the preprocessor/driver fed into the core.
type Program struct {
	Imports           []string
	CompilationUnits  []*CompilationUnit
}

// CompilationUnit is one preprocessed source file's worth of declarations.
type CompilationUnit struct {
	FilePath string
	Usings   []*UsingDirective
	Structs  []*StructDefinition
	Funcs    []*FunctionDeclaration
	Enums    []*EnumDefinition
}

// UsingDirective brings a namespace, optionally aliased, into scope for
// unqualified name lookup within its CompilationUnit.
type UsingDirective struct {
	Namespace string
	Alias     string // "" if the using is not aliased.
}

// IsAlias reports whether this using directive introduces an alias name
// rather than a bare "using ns;" that only widens unqualified lookup.
func (u *UsingDirective) IsAlias() bool {
	return u.Alias != ""
}

// EnumMember is one "name = value" pair inside an enum body.
type EnumMember struct {
	Name  string
	Value int
}

// EnumDefinition declares a named set of integer-valued members.
type EnumDefinition struct {
	Name      string
	Namespace string // "" for global scope.
	Members   []EnumMember
	Unit      *CompilationUnit
}

// FQN returns the enum's fully qualified name.
func (e *EnumDefinition) FQN() FQN {
	return Join(e.Namespace, e.Name)
}

// MemberVariable is one field declaration inside a struct body.
type MemberVariable struct {
	IsConst bool
	Type    *TypeNode
	Name    string
	Access  Access
	Tok     Token
}

// StructDefinition declares a struct: its members, methods, constructors,
// destructors, generic parameters and single base class.
type StructDefinition struct {
	Name              string
	GenericParameters []string // Single-letter type parameter names; empty for non-generic/monomorphized structs.
	BaseName          *TypeNode // nil if the struct has no base class.
	Namespace         string    // "" once monomorphized.
	Members           []*MemberVariable
	Methods           []*FunctionDeclaration
	Constructors      []*ConstructorDeclaration
	Destructors       []*DestructorDeclaration
	Unit              *CompilationUnit
	Tok               Token
}

// FQN returns the struct's fully qualified name.
func (s *StructDefinition) FQN() FQN {
	return Join(s.Namespace, s.Name)
}

// IsTemplate reports whether this struct still has unresolved generic
// parameters and must never be analyzed or emitted directly.
func (s *StructDefinition) IsTemplate() bool {
	return len(s.GenericParameters) > 0
}

// Parameter is one name+type entry of a function/method/ctor parameter list.
type Parameter struct {
	Name string
	Type *TypeNode
	Tok  Token
}

// FunctionDeclaration is a free function or a method (OwnerStruct != "").
// A nil Body denotes an external (imported) function.
type FunctionDeclaration struct {
	ReturnType  *TypeNode
	Name        string
	Parameters  []*Parameter
	Body        *Node // Block statement, or nil if external.
	OwnerStruct string // "" for free functions.
	Access      Access
	IsVirtual   bool
	IsOverride  bool
	Namespace   string
	Library     string // DLL this external function is imported from, from a "#import" directive; "" if unclassified.
	Unit        *CompilationUnit
	Tok         Token
}

// IsExternal reports whether the declaration has no body, i.e. it is
// resolved at link time by the FASM import table.
func (f *FunctionDeclaration) IsExternal() bool {
	return f.Body == nil
}

// IsMethod reports whether this declaration is a method of a struct.
func (f *FunctionDeclaration) IsMethod() bool {
	return f.OwnerStruct != ""
}

// ConstructorDeclaration initializes an instance of its owner struct.
type ConstructorDeclaration struct {
	Owner           string
	Namespace       string
	Access          Access
	Parameters      []*Parameter
	BaseInitializer *CallArgs // nil if no explicit base(...) initializer.
	Body            *Node     // Block statement.
	Unit            *CompilationUnit
	Tok             Token
}

// CallArgs is a bare argument-expression list, used by base initializers.
type CallArgs struct {
	Args []*Node
}

// DestructorDeclaration tears down an instance of its owner struct. At
// most one per struct; inheritance is never walked to find an inherited
// destructor for a struct that declares none (see spec Open Questions).
type DestructorDeclaration struct {
	Owner     string
	Namespace string
	Access    Access
	IsVirtual bool
	Body      *Node
	Unit      *CompilationUnit
	Tok       Token
}
