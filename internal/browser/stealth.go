package browser

import "fmt"

// stealthScript runs before any page script and hides the automation markers
// that plugin and webdriver checks look for.
func stealthScript(platform string) string {
	if platform == "" {
		platform = "Win32"
	}
	return fmt.Sprintf(`(() => {
	const proto = Object.getPrototypeOf(navigator);
	delete proto.webdriver;

	Object.defineProperty(navigator, 'platform', {
		get: () => %q,
	});

	const plugin = {
		description: 'Chromium PDF Plugin',
		filename: 'internal-pdf-viewer',
		name: 'Chromium PDF Plugin',
	};
	Object.defineProperty(navigator, 'plugins', {
		get: () => [plugin, plugin, plugin, plugin, plugin],
	});
})();`, platform)
}
