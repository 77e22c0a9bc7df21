package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	return runCLIWith(t, func(labels []string) (int, error) {
		t.Fatalf("menu opened for %v", args)
		return -1, nil
	}, args...)
}

func runCLIWith(t *testing.T, choose chooser, args ...string) (string, error) {
	t.Helper()

	cmd := setupCommands(choose)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_AddListDelete(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("MEALTIME_STORAGE_DRIVER", driver)

			out, err := runCLI(t)
			require.NoError(t, err)
			assert.Contains(t, out, "My happy meal time")
			assert.Contains(t, out, "Total: 0")

			out, err = runCLI(t, "add")
			require.NoError(t, err)
			assert.Contains(t, out, "Total: 1")

			_, err = runCLI(t, "add")
			require.NoError(t, err)

			out, err = runCLI(t, "list")
			require.NoError(t, err)
			assert.Contains(t, out, "Total: 2")
			assert.Contains(t, out, "Ago")

			out, err = runCLI(t, "delete", "1")
			require.NoError(t, err)
			assert.Contains(t, out, "Deleted meal #1")
			assert.Contains(t, out, "Total: 1")

			_, err = runCLI(t, "delete", "5")
			assert.ErrorIs(t, err, ErrOutOfRange)

			_, err = runCLI(t, "delete", "first")
			assert.Error(t, err)

			out, err = runCLI(t, "export", "--format", "json")
			require.NoError(t, err)

			var doc exportDoc
			require.NoError(t, json.Unmarshal([]byte(out), &doc))
			assert.Equal(t, "Max", doc.Person)
			assert.Len(t, doc.Meals, 1)
		})
	}
}

func TestCLI_DeleteWithoutMeals(t *testing.T) {
	isolateEnv(t)

	_, err := runCLI(t, "delete")
	assert.EqualError(t, err, "no meals to delete")
}

func TestCLI_Placeholder(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MEALTIME_EMPTY_PLACEHOLDER", "true")

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No meals yet")
	assert.Contains(t, out, "Total: 0")
}

func TestCLI_BadConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MEALTIME_STORAGE_DRIVER", "csv")

	_, err := runCLI(t, "list")
	assert.Error(t, err)
}

func exportedMealIDs(t *testing.T) []int64 {
	t.Helper()

	out, err := runCLI(t, "export", "-f", "json")
	require.NoError(t, err)

	var doc exportDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	var ids []int64
	for _, m := range doc.Meals {
		ids = append(ids, m.ID)
	}
	return ids
}

func addMeals(t *testing.T, n int) []int64 {
	t.Helper()

	for i := 0; i < n; i++ {
		_, err := runCLI(t, "add")
		require.NoError(t, err)
	}
	ids := exportedMealIDs(t)
	require.Len(t, ids, n)
	return ids
}

func TestCLI_DeleteFromMenu(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("MEALTIME_STORAGE_DRIVER", driver)
			ids := addMeals(t, 3)

			var shown []string
			out, err := runCLIWith(t, func(labels []string) (int, error) {
				shown = labels
				return 1, nil
			}, "delete")
			require.NoError(t, err)

			assert.Len(t, shown, 3)
			assert.Contains(t, out, "Deleted meal #2")
			assert.Equal(t, []int64{ids[0], ids[2]}, exportedMealIDs(t))
		})
	}
}

func TestCLI_DeleteFromMenu_Cancel(t *testing.T) {
	isolateEnv(t)
	ids := addMeals(t, 2)

	out, err := runCLIWith(t, func(labels []string) (int, error) {
		return -1, nil
	}, "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")
	assert.Equal(t, ids, exportedMealIDs(t))
}

func TestCLI_DeleteFromMenu_Error(t *testing.T) {
	isolateEnv(t)
	ids := addMeals(t, 1)

	errMenu := errors.New("no terminal")
	_, err := runCLIWith(t, func(labels []string) (int, error) {
		return -1, errMenu
	}, "delete")
	assert.ErrorIs(t, err, errMenu)
	assert.Equal(t, ids, exportedMealIDs(t))
}

func TestCLI_DeleteUsesOneBasedPositions(t *testing.T) {
	isolateEnv(t)
	ids := addMeals(t, 2)

	for _, arg := range []string{"0", "3"} {
		_, err := runCLI(t, "delete", arg)
		require.ErrorIs(t, err, ErrOutOfRange, arg)
		assert.Contains(t, err.Error(), "no meal #"+arg)
		assert.Contains(t, err.Error(), "from 1 to 2")
	}
	assert.Equal(t, ids, exportedMealIDs(t))
}

func TestCLI_DeleteCompletion(t *testing.T) {
	isolateEnv(t)
	addMeals(t, 2)

	out, err := runCLI(t, "__complete", "delete", "")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, []string{"1", "2"}, lines[:2])
	assert.Contains(t, out, ":4")

	out, err = runCLI(t, "__complete", "delete", "1", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ":4"), out)
}
