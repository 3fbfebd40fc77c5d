package config

import (
	"fmt"
	"strings"

	"storefront/internal/cart"
)

// Validate reports missing or malformed settings. The server refuses to start
// when it returns an error.
func (c Config) Validate() error {
	var problems []string

	required := []struct {
		key   string
		value string
	}{
		{"MONGO_URI", c.MongoURI},
		{"DB_NAME", c.DBName},
		{"JWT_SECRET", c.JWTSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, fmt.Sprintf("ENV %s is required", r.key))
		}
	}

	if _, err := cart.ParseMergePolicy(c.CartMergePolicy); err != nil {
		problems = append(problems, err.Error())
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		problems = append(problems, "ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) MergePolicy() cart.MergePolicy {
	policy, _ := cart.ParseMergePolicy(c.CartMergePolicy)
	return policy
}

// UsesRemoteOrders reports whether orders go to an external order service
// instead of the in-process one.
func (c Config) UsesRemoteOrders() bool {
	return strings.TrimSpace(c.OrderServiceURL) != ""
}
