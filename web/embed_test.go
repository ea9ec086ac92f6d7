package web

import "testing"

func TestDistContainsDashboard(t *testing.T) {
	for _, name := range []string{"dist/index.html", "dist/app.js", "dist/style.css"} {
		data, err := DistFS.ReadFile(name)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
