package assets

// DefaultStyleName is the theme selected when settings name none.
const DefaultStyleName = "default"

var defaultLoader = NewEmbeddedLoader()

// BuiltinStyles returns every bundled stylesheet in declaration order.
func BuiltinStyles() []Style {
	// The embedded set is fixed at build time; a load error here is a build defect.
	out, err := LoadAll(defaultLoader)
	if err != nil {
		panic("assets: embedded styles unreadable: " + err.Error())
	}
	return out
}
