//go:build !windows && !darwin

package browser

// command uses xdg-open, available on freedesktop systems.
func command(url string) (string, []string) {
	return "xdg-open", []string{url}
}
