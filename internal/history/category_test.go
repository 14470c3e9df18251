package history_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitt-tools/gitt/internal/history"
)

func TestCategorizePartitionsCompletely(testInstance *testing.T) {
	records := []history.CommitRecord{
		{Hash: "1", Type: "feat"},
		{Hash: "2", Type: "fix"},
		{Hash: "3", Type: "feat"},
		{Hash: "4", Type: "weird"},
		{Hash: "5", Type: history.TypeTagOther},
		{Hash: "6", Type: ""},
	}

	categorized := history.Categorize(records)
	require.Equal(testInstance, len(records), categorized.Total())

	features := categorized.Bucket(history.CategoryFeatures)
	require.Len(testInstance, features, 2)
	require.Equal(testInstance, "1", features[0].Hash)
	require.Equal(testInstance, "3", features[1].Hash)

	otherBucket := categorized.Bucket(history.CategoryOther)
	require.Len(testInstance, otherBucket, 3)
	require.Equal(testInstance, "4", otherBucket[0].Hash)
	require.Equal(testInstance, "weird", otherBucket[0].Type)
}

func TestCategorizeEmptyInput(testInstance *testing.T) {
	categorized := history.Categorize(nil)
	require.True(testInstance, categorized.IsEmpty())
	for _, categoryKey := range history.OrderedCategoryKeys() {
		require.Empty(testInstance, categorized.Bucket(categoryKey))
	}
}

func TestOrderedCategoryKeysStable(testInstance *testing.T) {
	expectedOrder := []history.CategoryKey{
		history.CategoryFeatures,
		history.CategoryFixes,
		history.CategoryChores,
		history.CategoryRefactors,
		history.CategoryDocs,
		history.CategoryStyle,
		history.CategoryTests,
		history.CategoryPerformance,
		history.CategoryCI,
		history.CategoryBuild,
		history.CategoryReverts,
		history.CategoryOther,
	}
	require.Equal(testInstance, expectedOrder, history.OrderedCategoryKeys())
}

func TestCategoryDisplayTitles(testInstance *testing.T) {
	require.Equal(testInstance, "Features", history.CategoryFeatures.DisplayTitle())
	require.Equal(testInstance, "Bug Fixes", history.CategoryFixes.DisplayTitle())
	require.Equal(testInstance, "Other Changes", history.CategoryOther.DisplayTitle())
}
