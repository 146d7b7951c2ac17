package assets

// StyleLoader defines the contract for loading theme stylesheets.
type StyleLoader interface {
	// LoadStyle loads a stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// StyleNames lists the available stylesheet names in presentation order.
	StyleNames() []string
}

// Style is a named stylesheet as shipped, before metadata parsing.
type Style struct {
	Name string // file name without extension
	CSS  string
}

// LoadAll loads every style the loader advertises, in order.
// Styles that vanish between listing and loading are skipped.
func LoadAll(l StyleLoader) ([]Style, error) {
	names := l.StyleNames()
	out := make([]Style, 0, len(names))
	for _, name := range names {
		css, err := l.LoadStyle(name)
		if err != nil {
			if isNotFoundError(err) {
				continue
			}
			return nil, err
		}
		out = append(out, Style{Name: name, CSS: css})
	}
	return out, nil
}
