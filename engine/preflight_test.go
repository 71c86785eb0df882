package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGitCapabilityQueryMatches(t *testing.T) {
	e := &Engine{}
	resp, handled := e.gitCapabilityQuery("what git tools do you have available?")
	assert.True(t, handled)
	assert.Contains(t, resp, "git_status")
	assert.Contains(t, resp, "git_commit")
}

func TestGitCapabilityQueryDoesNotMatchUnrelatedText(t *testing.T) {
	e := &Engine{}
	_, handled := e.gitCapabilityQuery("please commit this change")
	assert.False(t, handled)
}

func TestGitCapabilityQueryRequiresTrigger(t *testing.T) {
	e := &Engine{}
	_, handled := e.gitCapabilityQuery("git tools are fine")
	assert.False(t, handled)
}

func TestClassifyReadOnlyTrueForPureReadIntent(t *testing.T) {
	assert.True(t, classifyReadOnly("show me the contents of main.go"))
	assert.True(t, classifyReadOnly("what is the git log"))
}

func TestClassifyReadOnlyFalseWhenMutatingVerbPresent(t *testing.T) {
	assert.False(t, classifyReadOnly("show me the file then edit it"))
	assert.False(t, classifyReadOnly("add a new function"))
}

func TestClassifyReadOnlyFalseWithNoReadVerb(t *testing.T) {
	assert.False(t, classifyReadOnly("hello there"))
}

func TestClassifyReadOnlyWholeWordBoundary(t *testing.T) {
	// "add" must not match inside "address"
	assert.True(t, classifyReadOnly("show me the address book file"))
}

func TestRequiresToolEvidence(t *testing.T) {
	assert.True(t, requiresToolEvidence("how many files are in this repo"))
	assert.True(t, requiresToolEvidence("what's in the config file"))
	assert.False(t, requiresToolEvidence("what is the weather today"))
}
