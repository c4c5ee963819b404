package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReproCommand(t *testing.T) {
	fs := optionFlags(t, "--display-variant", "--derive=text, json")

	got := reproCommand("enumid", fs, "kind.go", "example", "Kind")
	assert.Equal(t, `enumid --input="kind.go" --pkg="example" --type="Kind" --derive="text, json" --display-variant`, got)
}

func TestReproCommandNoOptionFlags(t *testing.T) {
	got := reproCommand("enumid", optionFlags(t), "kind.go", "example", "Kind")
	assert.Equal(t, `enumid --input="kind.go" --pkg="example" --type="Kind"`, got)
}
