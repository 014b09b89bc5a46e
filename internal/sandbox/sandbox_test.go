package sandbox

import "testing"

func TestContainerNameIsPrefixed(t *testing.T) {
	got := ContainerName("firefox")
	want := "tpt-sandbox-firefox"
	if got != want {
		t.Fatalf("ContainerName(%q) = %q, want %q", "firefox", got, want)
	}
}

func TestContainerNameDistinctForDistinctPackages(t *testing.T) {
	if ContainerName("a") == ContainerName("b") {
		t.Fatal("ContainerName must not collide for distinct package names")
	}
}
