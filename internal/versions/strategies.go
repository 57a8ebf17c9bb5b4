package versions

const (
	tagReferencePrefixConstant      = "tags/"
	versionPrefixConstant           = "v"
	verbatimStrategyNameConstant    = "verbatim"
	tagStrategyNameConstant         = "tag"
	prefixedStrategyNameConstant    = "v-prefixed"
	prefixedTagStrategyNameConstant = "v-prefixed-tag"
)

// LabelStrategy derives a checkout reference from a version label.
type LabelStrategy struct {
	Name      string
	Transform func(label string) string
}

// VerbatimStrategy checks out the label as written.
func VerbatimStrategy() LabelStrategy {
	return LabelStrategy{Name: verbatimStrategyNameConstant, Transform: func(label string) string {
		return label
	}}
}

// TagStrategy qualifies the label as a tag reference, which wins over a branch of the same name.
func TagStrategy() LabelStrategy {
	return LabelStrategy{Name: tagStrategyNameConstant, Transform: func(label string) string {
		return tagReferencePrefixConstant + label
	}}
}

// PrefixedStrategy prepends "v" to the label.
func PrefixedStrategy() LabelStrategy {
	return LabelStrategy{Name: prefixedStrategyNameConstant, Transform: PrefixedLabel}
}

// PrefixedTagStrategy prepends "v" and qualifies the result as a tag reference.
func PrefixedTagStrategy() LabelStrategy {
	return LabelStrategy{Name: prefixedTagStrategyNameConstant, Transform: func(label string) string {
		return tagReferencePrefixConstant + PrefixedLabel(label)
	}}
}

// DefaultLabelStrategies returns {label}, tags/{label}, v{label}, tags/v{label} in that order.
func DefaultLabelStrategies() []LabelStrategy {
	return []LabelStrategy{
		VerbatimStrategy(),
		TagStrategy(),
		PrefixedStrategy(),
		PrefixedTagStrategy(),
	}
}

// PrefixedLabel returns label with a leading "v".
func PrefixedLabel(label string) string {
	return versionPrefixConstant + label
}
