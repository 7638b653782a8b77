package main

// InstantiationKind is the compiler's classification of why a template
// instantiation event was emitted. Tag 23 (Memoization) is the one kind
// the call-graph builder treats specially (see callgraph.go).
type InstantiationKind uint32

const (
	KindTemplateInstantiation InstantiationKind = iota
	KindDefaultTemplateArgumentInstantiation
	KindDefaultFunctionArgumentInstantiation
	KindExplicitTemplateArgumentSubstitution
	KindDeducedTemplateArgumentSubstitution
	KindPriorTemplateArgumentSubstitution
	KindDefaultTemplateArgumentChecking
	KindExceptionSpecEvaluation
	KindExceptionSpecInstantiation
	KindRequirementInstantiation
	KindNestedRequirementConstraintsCheck
	KindDeclaringSpecialMember
	KindDeclaringImplicitEqualityComparison
	KindDefiningSynthesizedFunction
	KindConstraintsCheck
	KindConstraintSubstitution
	KindConstraintNormalization
	KindRequirementParameterInstantiation
	KindParameterMappingSubstitution
	KindRewritingOperatorAsSpaceship
	KindInitializingStructuredBinding
	KindMarkingClassDllexported
	KindBuildingBuiltinDumpStructCall
	KindMemoization
)

var instantiationKindStrings = [...]string{
	"TemplateInstantiation",
	"DefaultTemplateArgumentInstantiation",
	"DefaultFunctionArgumentInstantiation",
	"ExplicitTemplateArgumentSubstitution",
	"DeducedTemplateArgumentSubstitution",
	"PriorTemplateArgumentSubstitution",
	"DefaultTemplateArgumentChecking",
	"ExceptionSpecEvaluation",
	"ExceptionSpecInstantiation",
	"RequirementInstantiation",
	"NestedRequirementConstraintsCheck",
	"DeclaringSpecialMember",
	"DeclaringImplicitEqualityComparison",
	"DefiningSynthesizedFunction",
	"ConstraintsCheck",
	"ConstraintSubstitution",
	"ConstraintNormalization",
	"RequirementParameterInstantiation",
	"ParameterMappingSubstitution",
	"RewritingOperatorAsSpaceship",
	"InitializingStructuredBinding",
	"MarkingClassDllexported",
	"BuildingBuiltinDumpStructCall",
	"Memoization",
}

// String renders the canonical name for a kind, or "UnknownInstantiationKind"
// for any tag outside the known range.
func (k InstantiationKind) String() string {
	if int(k) < 0 || int(k) >= len(instantiationKindStrings) {
		return "UnknownInstantiationKind"
	}
	return instantiationKindStrings[k]
}

// IsMemoization reports whether this kind is the one the call-graph builder
// folds into a previously-seen vertex rather than creating a new one.
func (k InstantiationKind) IsMemoization() bool {
	return k == KindMemoization
}
