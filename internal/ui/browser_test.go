package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesearch/internal/domain"
)

func TestBrowserNavigatorResolvesAgainstBase(t *testing.T) {
	b, err := NewBrowserNavigator("http://localhost:8080/", false)
	require.NoError(t, err)

	got, err := b.Resolve("/products/ruby-ring")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/products/ruby-ring", got)

	got, err = b.Resolve("https://cdn.example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x", got)
}

func TestBrowserNavigatorLaunchesOpener(t *testing.T) {
	b, err := NewBrowserNavigator("http://localhost:8080", true)
	require.NoError(t, err)

	var name string
	var args []string
	b.run = func(n string, a ...string) error {
		name, args = n, a
		return nil
	}

	require.NoError(t, b.Navigate("/search?q=red", domain.NavigateSearchPage))
	assert.NotEmpty(t, name)
	assert.Equal(t, "http://localhost:8080/search?q=red", args[len(args)-1])
}

func TestBrowserNavigatorDisabledOnlyLogs(t *testing.T) {
	b, err := NewBrowserNavigator("http://localhost:8080", false)
	require.NoError(t, err)
	b.run = func(string, ...string) error {
		t.Fatal("opener must not run")
		return nil
	}
	assert.NoError(t, b.Navigate("/products/a", domain.NavigateClick))
}

func TestOpenerCommandPerPlatform(t *testing.T) {
	name, _ := openerCommand("darwin", "u")
	assert.Equal(t, "open", name)
	name, args := openerCommand("windows", "u")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "u"}, args)
	name, _ = openerCommand("linux", "u")
	assert.Equal(t, "xdg-open", name)
}
