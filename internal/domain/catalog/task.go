package catalog

import (
	"sort"
	"strings"

	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Task is a composite piece of work. Each of its items is priced by
// quantity ranges, so the cost of a task depends on the quantity ordered.
type Task struct {
	shared.BaseAggregateRoot
	Name         string
	Unit         string
	Supplier     string
	CategoryID   uuid.UUID
	CategoryCode string
	GroupCode    string
	Items        []TaskItem
}

// TaskItem is one priced line of a task
type TaskItem struct {
	ID       uuid.UUID
	Name     string
	Position int
	Margins  []TaskItemMargin
}

// TaskItemMargin gives the unit value of a task item for quantities within range
type TaskItemMargin struct {
	ID uuid.UUID
	margin.Range
	Value decimal.Decimal
}

// NewTaskItemMargin creates a validated task item margin
func NewTaskItemMargin(minimum, maximum, value decimal.Decimal) (TaskItemMargin, error) {
	r, err := margin.NewRange(minimum, maximum)
	if err != nil {
		return TaskItemMargin{}, err
	}
	if value.IsNegative() {
		return TaskItemMargin{}, shared.NewDomainError("INVALID_VALUE", "Value cannot be negative")
	}
	return TaskItemMargin{ID: uuid.New(), Range: r, Value: value}, nil
}

// NewTaskItem creates a task item with validated, non-overlapping margins
func NewTaskItem(name string, margins []TaskItemMargin) (TaskItem, error) {
	if strings.TrimSpace(name) == "" {
		return TaskItem{}, shared.NewDomainError("INVALID_NAME", "Task item name cannot be empty")
	}
	if err := margin.ValidateRanges(margins); err != nil {
		return TaskItem{}, err
	}
	sorted := append([]TaskItemMargin(nil), margins...)
	margin.SortRanges(sorted)
	return TaskItem{ID: uuid.New(), Name: name, Margins: sorted}, nil
}

// FindValue returns the unit value for the quantity, or zero when no range matches
func (i TaskItem) FindValue(quantity decimal.Decimal) decimal.Decimal {
	if m, ok := margin.Find(i.Margins, quantity); ok {
		return m.Value
	}
	return decimal.Zero
}

// NewTask creates a new task without items
func NewTask(name, unit string, category *Category) (*Task, error) {
	if category == nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Task category is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Task name cannot be empty")
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	task := &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Unit:              unit,
		CategoryID:        category.ID,
		CategoryCode:      category.Code,
		GroupCode:         category.GroupCode,
		Items:             make([]TaskItem, 0),
	}
	task.AddDomainEvent(NewTaskChangedEvent(task, EventTypeTaskCreated))

	return task, nil
}

// Update changes the task details
func (t *Task) Update(name, unit, supplier string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Task name cannot be empty")
	}
	if err := validateUnit(unit); err != nil {
		return err
	}

	t.Name = name
	t.Unit = unit
	t.Supplier = supplier
	t.touch()
	t.AddDomainEvent(NewTaskChangedEvent(t, EventTypeTaskUpdated))

	return nil
}

// MoveTo assigns the task to another category
func (t *Task) MoveTo(category *Category) error {
	if category == nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Task category is required")
	}
	t.CategoryID = category.ID
	t.CategoryCode = category.Code
	t.GroupCode = category.GroupCode
	t.touch()
	return nil
}

// SetItems replaces the items of the task, keeping their order as positions
func (t *Task) SetItems(items []TaskItem) error {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		key := strings.ToLower(strings.TrimSpace(items[i].Name))
		if _, ok := seen[key]; ok {
			return shared.NewDomainError("DUPLICATE_ITEM", "Task item names must be unique: "+items[i].Name)
		}
		seen[key] = struct{}{}
		if err := margin.ValidateRanges(items[i].Margins); err != nil {
			return err
		}
		items[i].Position = i
	}
	t.Items = items
	t.touch()
	t.AddDomainEvent(NewTaskChangedEvent(t, EventTypeTaskUpdated))

	return nil
}

// CountMargins returns the total number of margins across items
func (t *Task) CountMargins() int {
	count := 0
	for _, item := range t.Items {
		count += len(item.Margins)
	}
	return count
}

// TaskComputeItem is the computed value of one task item
type TaskComputeItem struct {
	ItemID uuid.UUID
	Name   string
	Value  decimal.Decimal
	Amount decimal.Decimal
}

// TaskComputeResult is the outcome of Task.Compute
type TaskComputeResult struct {
	TaskID   uuid.UUID
	Quantity decimal.Decimal
	Items    []TaskComputeItem
	Overall  decimal.Decimal
}

// Compute prices the selected items for the given quantity. When itemIDs is
// empty every item is used. Items without a matching range are valued at zero.
func (t *Task) Compute(quantity decimal.Decimal, itemIDs []uuid.UUID) (*TaskComputeResult, error) {
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	selected := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		selected[id] = struct{}{}
	}

	items := append([]TaskItem(nil), t.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	result := &TaskComputeResult{
		TaskID:   t.ID,
		Quantity: quantity,
		Items:    make([]TaskComputeItem, 0, len(items)),
		Overall:  decimal.Zero,
	}
	for _, item := range items {
		if len(selected) > 0 {
			if _, ok := selected[item.ID]; !ok {
				continue
			}
		}
		value := item.FindValue(quantity)
		amount := value.Mul(quantity)
		result.Items = append(result.Items, TaskComputeItem{
			ItemID: item.ID,
			Name:   item.Name,
			Value:  value,
			Amount: amount,
		})
		result.Overall = result.Overall.Add(amount)
	}

	return result, nil
}

func (t *Task) touch() {
	t.MarkModified()
}
