// Package seed loads reference data (states, groups, categories, products,
// global margins and users) from a YAML fixture. Existing records are kept,
// so a fixture can be applied more than once.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// Fixture is the content of a seed file
type Fixture struct {
	States        []StateFixture    `yaml:"states"`
	Groups        []GroupFixture    `yaml:"groups"`
	Categories    []CategoryFixture `yaml:"categories"`
	Products      []ProductFixture  `yaml:"products"`
	GlobalMargins []MarginFixture   `yaml:"global_margins"`
	Users         []UserFixture     `yaml:"users"`
}

// StateFixture describes a calculation state
type StateFixture struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Editable    bool   `yaml:"editable"`
	Color       string `yaml:"color"`
}

// GroupFixture describes a group and its margins
type GroupFixture struct {
	Code        string          `yaml:"code"`
	Description string          `yaml:"description"`
	Margins     []MarginFixture `yaml:"margins"`
}

// CategoryFixture describes a category, attached to a group by code
type CategoryFixture struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Group       string `yaml:"group"`
}

// ProductFixture describes a product, attached to a category by code
type ProductFixture struct {
	Description string          `yaml:"description"`
	Unit        string          `yaml:"unit"`
	Price       decimal.Decimal `yaml:"price"`
	Supplier    string          `yaml:"supplier"`
	Category    string          `yaml:"category"`
}

// MarginFixture is a range with its margin multiplier
type MarginFixture struct {
	Minimum decimal.Decimal `yaml:"minimum"`
	Maximum decimal.Decimal `yaml:"maximum"`
	Margin  decimal.Decimal `yaml:"margin"`
}

// UserFixture describes an account
type UserFixture struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Parse decodes a fixture. Unknown keys are refused.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed fixture: %w", err)
	}
	return &f, nil
}

// Load reads a fixture file, or the embedded default fixture when path is empty
func Load(path string) (*Fixture, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultFixture))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed fixture: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Repositories groups the repositories written by the seeder
type Repositories struct {
	States        calculation.CalculationStateRepository
	Groups        catalog.GroupRepository
	Categories    catalog.CategoryRepository
	Products      catalog.ProductRepository
	GlobalMargins margin.GlobalMarginRepository
	Users         identity.UserRepository
}

// Result counts the created and skipped records per kind
type Result struct {
	Created map[string]int
	Skipped map[string]int
}

func newResult() *Result {
	return &Result{Created: map[string]int{}, Skipped: map[string]int{}}
}

func (r *Result) record(kind string, created bool) {
	if created {
		r.Created[kind]++
	} else {
		r.Skipped[kind]++
	}
}

// Seeder applies fixtures
type Seeder struct {
	repos  Repositories
	logger *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(repos Repositories, logger *zap.Logger) *Seeder {
	return &Seeder{repos: repos, logger: logger}
}

// Apply creates the records of f that do not exist yet.
// Global margins are only written when none is stored.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Result, error) {
	result := newResult()
	steps := []func(context.Context, *Fixture, *Result) error{
		s.applyStates,
		s.applyGroups,
		s.applyCategories,
		s.applyProducts,
		s.applyGlobalMargins,
		s.applyUsers,
	}
	for _, step := range steps {
		if err := step(ctx, f, result); err != nil {
			return result, err
		}
	}
	s.logger.Info("Seed applied",
		zap.Any("created", result.Created),
		zap.Any("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Seeder) applyStates(ctx context.Context, f *Fixture, result *Result) error {
	for _, fx := range f.States {
		exists, err := s.repos.States.ExistsByCode(ctx, fx.Code, nil)
		if err != nil {
			return err
		}
		if exists {
			result.record("states", false)
			continue
		}
		state, err := calculation.NewCalculationState(fx.Code, fx.Description, fx.Editable, fx.Color)
		if err != nil {
			return fmt.Errorf("state %s: %w", fx.Code, err)
		}
		if err := s.repos.States.Save(ctx, state); err != nil {
			return fmt.Errorf("state %s: %w", fx.Code, err)
		}
		result.record("states", true)
	}
	return nil
}

func (s *Seeder) applyGroups(ctx context.Context, f *Fixture, result *Result) error {
	for _, fx := range f.Groups {
		exists, err := s.repos.Groups.ExistsByCode(ctx, fx.Code)
		if err != nil {
			return err
		}
		if exists {
			result.record("groups", false)
			continue
		}
		group, err := catalog.NewGroup(fx.Code, fx.Description)
		if err != nil {
			return fmt.Errorf("group %s: %w", fx.Code, err)
		}
		margins := make([]catalog.GroupMargin, 0, len(fx.Margins))
		for _, m := range fx.Margins {
			gm, err := catalog.NewGroupMargin(m.Minimum, m.Maximum, m.Margin)
			if err != nil {
				return fmt.Errorf("group %s: %w", fx.Code, err)
			}
			margins = append(margins, gm)
		}
		if err := group.SetMargins(margins); err != nil {
			return fmt.Errorf("group %s: %w", fx.Code, err)
		}
		if err := s.repos.Groups.Save(ctx, group); err != nil {
			return fmt.Errorf("group %s: %w", fx.Code, err)
		}
		result.record("groups", true)
	}
	return nil
}

func (s *Seeder) applyCategories(ctx context.Context, f *Fixture, result *Result) error {
	for _, fx := range f.Categories {
		exists, err := s.repos.Categories.ExistsByCode(ctx, fx.Code)
		if err != nil {
			return err
		}
		if exists {
			result.record("categories", false)
			continue
		}
		group, err := s.repos.Groups.FindByCode(ctx, strings.ToUpper(fx.Group))
		if err != nil {
			return fmt.Errorf("category %s: group %s: %w", fx.Code, fx.Group, err)
		}
		category, err := catalog.NewCategory(fx.Code, fx.Description, group)
		if err != nil {
			return fmt.Errorf("category %s: %w", fx.Code, err)
		}
		if err := s.repos.Categories.Save(ctx, category); err != nil {
			return fmt.Errorf("category %s: %w", fx.Code, err)
		}
		result.record("categories", true)
	}
	return nil
}

func (s *Seeder) applyProducts(ctx context.Context, f *Fixture, result *Result) error {
	for _, fx := range f.Products {
		exists, err := s.repos.Products.ExistsByDescription(ctx, fx.Description, nil)
		if err != nil {
			return err
		}
		if exists {
			result.record("products", false)
			continue
		}
		category, err := s.repos.Categories.FindByCode(ctx, strings.ToUpper(fx.Category))
		if err != nil {
			return fmt.Errorf("product %s: category %s: %w", fx.Description, fx.Category, err)
		}
		product, err := catalog.NewProduct(fx.Description, fx.Unit, fx.Price, category)
		if err != nil {
			return fmt.Errorf("product %s: %w", fx.Description, err)
		}
		product.SetSupplier(fx.Supplier)
		if err := s.repos.Products.Save(ctx, product); err != nil {
			return fmt.Errorf("product %s: %w", fx.Description, err)
		}
		result.record("products", true)
	}
	return nil
}

func (s *Seeder) applyGlobalMargins(ctx context.Context, f *Fixture, result *Result) error {
	if len(f.GlobalMargins) == 0 {
		return nil
	}
	stored, err := s.repos.GlobalMargins.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(stored) > 0 {
		result.Skipped["global_margins"] += len(f.GlobalMargins)
		return nil
	}

	margins := make([]margin.GlobalMargin, 0, len(f.GlobalMargins))
	for _, m := range f.GlobalMargins {
		gm, err := margin.NewGlobalMargin(m.Minimum, m.Maximum, m.Margin)
		if err != nil {
			return fmt.Errorf("global margin: %w", err)
		}
		margins = append(margins, *gm)
	}
	if err := margin.ValidateRanges(margins); err != nil {
		return fmt.Errorf("global margins: %w", err)
	}
	margin.SortRanges(margins)
	if err := s.repos.GlobalMargins.ReplaceAll(ctx, margins); err != nil {
		return err
	}
	result.Created["global_margins"] += len(margins)
	return nil
}

func (s *Seeder) applyUsers(ctx context.Context, f *Fixture, result *Result) error {
	for _, fx := range f.Users {
		exists, err := s.repos.Users.ExistsByUsername(ctx, fx.Username, nil)
		if err != nil {
			return err
		}
		if exists {
			result.record("users", false)
			continue
		}
		role := identity.RoleUser
		if fx.Role != "" {
			if role, err = identity.ParseRole(fx.Role); err != nil {
				return fmt.Errorf("user %s: %w", fx.Username, err)
			}
		}
		user, err := identity.NewUser(fx.Username, fx.Email, fx.Password, role)
		if err != nil {
			return fmt.Errorf("user %s: %w", fx.Username, err)
		}
		if err := s.repos.Users.Save(ctx, user); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				result.record("users", false)
				continue
			}
			return fmt.Errorf("user %s: %w", fx.Username, err)
		}
		result.record("users", true)
	}
	return nil
}
