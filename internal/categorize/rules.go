package categorize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/intake/internal/accounts"
	"github.com/cleared-dev/intake/internal/model"
)

// Direction restricts a rule to outflows or inflows.
type Direction string

const (
	DirectionAny     Direction = ""
	DirectionOutflow Direction = "outflow"
	DirectionInflow  Direction = "inflow"
)

// defaultRuleConfidence applies to rules that do not set one.
const defaultRuleConfidence = 0.9

// Rule maps descriptions matching Match to an account.
type Rule struct {
	Match       string    `yaml:"match"` // regular expression, case-insensitive
	AccountCode string    `yaml:"account_code"`
	Category    string    `yaml:"category,omitempty"`
	Merchant    string    `yaml:"merchant,omitempty"`
	Confidence  float64   `yaml:"confidence,omitempty"`
	Direction   Direction `yaml:"direction,omitempty"`
}

// RuleSet is the on-disk shape of categorization-rules.yaml.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// RuleCategorizer assigns the first matching rule. It never calls out and is
// safe for concurrent use.
type RuleCategorizer struct {
	rules []compiledRule
}

// NewRuleCategorizer compiles rules. When chart is non-nil every rule's
// account code must exist in it, and rules without a category take the
// account name.
func NewRuleCategorizer(rules []Rule, chart *accounts.Service) (*RuleCategorizer, error) {
	rc := &RuleCategorizer{}
	for i, r := range rules {
		if r.Match == "" {
			return nil, fmt.Errorf("rule %d: match is required", i+1)
		}
		if r.AccountCode == "" {
			return nil, fmt.Errorf("rule %d: account_code is required", i+1)
		}
		switch r.Direction {
		case DirectionAny, DirectionOutflow, DirectionInflow:
		default:
			return nil, fmt.Errorf("rule %d: unknown direction %q", i+1, r.Direction)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return nil, fmt.Errorf("rule %d: confidence %.2f outside [0,1]", i+1, r.Confidence)
		}
		if r.Confidence == 0 {
			r.Confidence = defaultRuleConfidence
		}
		if chart != nil {
			acct, ok := chart.Get(r.AccountCode)
			if !ok {
				return nil, fmt.Errorf("rule %d: account %s is not in the chart of accounts", i+1, r.AccountCode)
			}
			if r.Category == "" {
				r.Category = acct.Name
			}
		}

		re, err := regexp.Compile("(?i)" + r.Match)
		if err != nil {
			return nil, fmt.Errorf("rule %d: compiling %q: %w", i+1, r.Match, err)
		}
		rc.rules = append(rc.rules, compiledRule{Rule: r, re: re})
	}
	return rc, nil
}

// LoadRules reads a rules file and compiles it against chart.
func LoadRules(path string, chart *accounts.Service) (*RuleCategorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	rc, err := NewRuleCategorizer(set.Rules, chart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rc, nil
}

// SaveRules writes a rule set as YAML.
func SaveRules(path string, set RuleSet) error {
	data, err := yaml.Marshal(&set)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultRules returns the starter rules written by `intake init`. Codes
// refer to accounts.DefaultChart.
func DefaultRules() RuleSet {
	return RuleSet{Rules: []Rule{
		{Match: `github|aws|google cloud|digitalocean|heroku`, AccountCode: "5020", Confidence: 0.95, Direction: DirectionOutflow},
		{Match: `staples|office ?depot`, AccountCode: "5030", Direction: DirectionOutflow},
		{Match: `comcast|verizon|at&t|hydro|energy|internet`, AccountCode: "5060", Direction: DirectionOutflow},
		{Match: `coffee|starbucks|tim hortons|restaurant|cafe`, AccountCode: "5050", Confidence: 0.8, Direction: DirectionOutflow},
		{Match: `service fee|monthly fee|overdraft|bank fee`, AccountCode: "5070", Direction: DirectionOutflow},
		{Match: `interest`, AccountCode: "4020", Direction: DirectionInflow},
		{Match: `invoice|payroll|salary`, AccountCode: "4010", Confidence: 0.75, Direction: DirectionInflow},
	}}
}

// Len returns the number of compiled rules.
func (rc *RuleCategorizer) Len() int { return len(rc.rules) }

// Categorize returns the first rule matching the transaction's description,
// or ErrNoMatch.
func (rc *RuleCategorizer) Categorize(ctx context.Context, txn model.Transaction) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return Assignment{}, err
	}

	desc := txn.Description
	if desc == "" {
		desc = txn.OriginalDescription
	}
	for _, r := range rc.rules {
		if !r.appliesTo(txn) || !r.re.MatchString(desc) {
			continue
		}
		return Assignment{
			AccountCode: r.AccountCode,
			Category:    r.Category,
			Merchant:    r.Merchant,
			Confidence:  r.Confidence,
		}, nil
	}
	return Assignment{}, ErrNoMatch
}

func (r compiledRule) appliesTo(txn model.Transaction) bool {
	switch r.Direction {
	case DirectionOutflow:
		return txn.Amount.IsNegative()
	case DirectionInflow:
		return txn.Amount.IsPositive()
	}
	return true
}
