package identity

import (
	"testing"

	"privmap/internal/domain"
)

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
	}{
		{
			name: "plain JSON",
			raw:  `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"*","Resource":"*"}]}`,
		},
		{
			name: "URL-encoded JSON",
			raw:  `%7B%22Version%22%3A%222012-10-17%22%2C%22Statement%22%3A%5B%5D%7D`,
		},
		{
			name:    "empty string",
			raw:     "",
			wantNil: true,
		},
		{
			name:    "garbage",
			raw:     "not a policy",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseDocument(tt.raw)
			if (doc == nil) != tt.wantNil {
				t.Errorf("ParseDocument(%q) nil = %v, want %v", tt.raw, doc == nil, tt.wantNil)
			}
			if !tt.wantNil && doc["Version"] != "2012-10-17" {
				t.Errorf("parsed document missing Version, got %v", doc)
			}
		})
	}
}

func TestClassifyAdmin(t *testing.T) {
	tests := []struct {
		name     string
		policies []domain.AttachedPolicy
		want     bool
	}{
		{
			name: "AdministratorAccess managed policy",
			policies: []domain.AttachedPolicy{
				{Arn: "arn:aws:iam::aws:policy/AdministratorAccess", Name: "AdministratorAccess"},
			},
			want: true,
		},
		{
			name: "full wildcard statement",
			policies: []domain.AttachedPolicy{
				{Name: "inline", Document: domain.PolicyDocument{
					"Statement": []interface{}{
						map[string]interface{}{"Effect": "Allow", "Action": "*", "Resource": "*"},
					},
				}},
			},
			want: true,
		},
		{
			name: "iam wildcard on all resources",
			policies: []domain.AttachedPolicy{
				{Name: "inline", Document: domain.PolicyDocument{
					"Statement": []interface{}{
						map[string]interface{}{"Effect": "Allow", "Action": "iam:*", "Resource": "*"},
					},
				}},
			},
			want: true,
		},
		{
			name: "wildcard action on scoped resource",
			policies: []domain.AttachedPolicy{
				{Name: "inline", Document: domain.PolicyDocument{
					"Statement": []interface{}{
						map[string]interface{}{"Effect": "Allow", "Action": "*", "Resource": "arn:aws:s3:::bucket/*"},
					},
				}},
			},
			want: false,
		},
		{
			name: "deny wildcard is not admin",
			policies: []domain.AttachedPolicy{
				{Name: "inline", Document: domain.PolicyDocument{
					"Statement": []interface{}{
						map[string]interface{}{"Effect": "Deny", "Action": "*", "Resource": "*"},
					},
				}},
			},
			want: false,
		},
		{
			name: "scoped permissions only",
			policies: []domain.AttachedPolicy{
				{Name: "inline", Document: domain.PolicyDocument{
					"Statement": []interface{}{
						map[string]interface{}{"Effect": "Allow", "Action": "s3:GetObject", "Resource": "*"},
					},
				}},
			},
			want: false,
		},
		{
			name:     "no policies",
			policies: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyAdmin(tt.policies); got != tt.want {
				t.Errorf("classifyAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}
