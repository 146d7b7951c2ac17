//go:build windows

package browser

// command goes through rundll32 so that no console window flashes up.
func command(url string) (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler", url}
}
