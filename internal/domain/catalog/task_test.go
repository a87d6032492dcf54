package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(t *testing.T) *Task {
	t.Helper()
	group, _ := NewGroup("MO", "")
	category, _ := NewCategory("IMPRESSION", "", group)
	task, err := NewTask("Impression offset", "feuille", category)
	require.NoError(t, err)

	m1, err := NewTaskItemMargin(dec("0"), dec("100"), dec("2"))
	require.NoError(t, err)
	m2, err := NewTaskItemMargin(dec("100"), dec("1000"), dec("1.5"))
	require.NoError(t, err)
	plates, err := NewTaskItem("Plaques", []TaskItemMargin{m2, m1})
	require.NoError(t, err)

	m3, err := NewTaskItemMargin(dec("0"), dec("500"), dec("0.1"))
	require.NoError(t, err)
	paper, err := NewTaskItem("Papier", []TaskItemMargin{m3})
	require.NoError(t, err)

	require.NoError(t, task.SetItems([]TaskItem{plates, paper}))
	return task
}

func TestTask_Compute(t *testing.T) {
	task := newTestTask(t)

	t.Run("computes every item when none selected", func(t *testing.T) {
		result, err := task.Compute(dec("100"), nil)
		require.NoError(t, err)
		require.Len(t, result.Items, 2)

		assert.Equal(t, "Plaques", result.Items[0].Name)
		assert.True(t, result.Items[0].Value.Equal(dec("1.5")))
		assert.True(t, result.Items[0].Amount.Equal(dec("150")))
		assert.True(t, result.Items[1].Amount.Equal(dec("10")))
		assert.True(t, result.Overall.Equal(dec("160")))
	})

	t.Run("computes only selected items", func(t *testing.T) {
		result, err := task.Compute(dec("10"), []uuid.UUID{task.Items[1].ID})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.True(t, result.Overall.Equal(dec("1")))
	})

	t.Run("values items without matching range at zero", func(t *testing.T) {
		result, err := task.Compute(dec("600"), nil)
		require.NoError(t, err)
		assert.True(t, result.Items[1].Value.IsZero())
		assert.True(t, result.Overall.Equal(dec("900")))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := task.Compute(dec("-1"), nil)
		require.Error(t, err)
	})
}

func TestTask_SetItems(t *testing.T) {
	task := newTestTask(t)

	t.Run("assigns positions", func(t *testing.T) {
		assert.Equal(t, 0, task.Items[0].Position)
		assert.Equal(t, 1, task.Items[1].Position)
		assert.Equal(t, 3, task.CountMargins())
	})

	t.Run("rejects duplicate item names", func(t *testing.T) {
		a, _ := NewTaskItem("Papier", nil)
		b, _ := NewTaskItem("papier ", nil)
		err := task.SetItems([]TaskItem{a, b})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be unique")
	})
}

func TestNewTaskItem(t *testing.T) {
	t.Run("rejects overlapping margins", func(t *testing.T) {
		m1, _ := NewTaskItemMargin(dec("0"), dec("100"), dec("1"))
		m2, _ := NewTaskItemMargin(dec("50"), dec("150"), dec("1"))
		_, err := NewTaskItem("Item", []TaskItemMargin{m1, m2})
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewTaskItem("", nil)
		require.Error(t, err)
	})
}
