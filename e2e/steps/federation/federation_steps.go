package federation

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetStatus() int
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers federation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &federationSteps{tc: tc}

	// Background and seeding
	ctx.Step(`^the gateway is running$`, steps.gatewayIsRunning)
	ctx.Step(`^a user "([^"]*)" with email "([^"]*)"$`, steps.userExists)
	ctx.Step(`^user "([^"]*)" has an order "([^"]*)" totalling (\d+)$`, steps.userHasOrder)

	// Queries
	ctx.Step(`^I query:$`, steps.query)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)
	ctx.Step(`^the data at "([^"]*)" should have (\d+) items$`, steps.dataShouldHaveItems)
	ctx.Step(`^the data at "([^"]*)" should equal "([^"]*)"$`, steps.dataShouldEqual)
	ctx.Step(`^the data at "([^"]*)" should be present$`, steps.dataShouldBePresent)
}

type federationSteps struct {
	tc TestContext
}

func (s *federationSteps) gatewayIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/healthz", nil); err != nil {
		return err
	}
	return s.statusShouldBe(ctx, 200)
}

func (s *federationSteps) userExists(ctx context.Context, id, email string) error {
	return s.mutate(ctx, fmt.Sprintf(`mutation { upsertUser(id: %q, email: %q, name: "e2e") { id } }`, id, email))
}

func (s *federationSteps) userHasOrder(ctx context.Context, userID, orderID string, total int) error {
	return s.mutate(ctx, fmt.Sprintf(`mutation { createOrder(id: %q, userId: %q, total: %d) { id } }`, orderID, userID, total))
}

func (s *federationSteps) mutate(ctx context.Context, q string) error {
	if err := s.tc.POST("/graphql", map[string]string{"query": q}); err != nil {
		return err
	}
	return s.statusShouldBe(ctx, 200)
}

func (s *federationSteps) query(ctx context.Context, doc *godog.DocString) error {
	return s.tc.POST("/graphql", map[string]string{"query": doc.Content})
}

func (s *federationSteps) statusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.GetStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d", status, got)
	}
	return nil
}

func (s *federationSteps) errorCodeShouldBe(ctx context.Context, code string) error {
	v, err := s.tc.GetResponseField("error")
	if err != nil {
		return err
	}
	if v != code {
		return fmt.Errorf("expected error %q, got %v", code, v)
	}
	return nil
}

func (s *federationSteps) dataShouldHaveItems(ctx context.Context, path string, n int) error {
	v, err := s.dataAt(path)
	if err != nil {
		return err
	}
	items, ok := v.([]interface{})
	if !ok {
		return fmt.Errorf("%s is not a list: %v", path, v)
	}
	if len(items) != n {
		return fmt.Errorf("expected %d items at %s, got %d", n, path, len(items))
	}
	return nil
}

func (s *federationSteps) dataShouldEqual(ctx context.Context, path, want string) error {
	v, err := s.dataAt(path)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", path, want, got)
	}
	return nil
}

func (s *federationSteps) dataShouldBePresent(ctx context.Context, path string) error {
	v, err := s.dataAt(path)
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("%s is null", path)
	}
	return nil
}

// dataAt walks a dotted path below "data"; numeric segments index lists.
func (s *federationSteps) dataAt(path string) (interface{}, error) {
	cur, err := s.tc.GetResponseField("data")
	if err != nil {
		return nil, err
	}
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("no %q in %v", seg, node)
			}
			cur = next
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("bad index %q for list of %d", seg, len(node))
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %s at %q", reflect.TypeOf(cur), seg)
		}
	}
	return cur, nil
}
