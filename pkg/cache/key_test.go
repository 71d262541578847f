package cache

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "domain only",
			key:  NewKey("dashboard", ""),
			want: "dashboard",
		},
		{
			name: "params and version",
			key:  NewKey("orders_enriched", "v2", "30d", "200"),
			want: "orders_enriched_30d_200_v2",
		},
		{
			name: "unsafe characters sanitized",
			key:  NewKey("catalog", "v1", "A21TJ/RU:UN4*KGV"),
			want: "catalog_A21TJ_RU_UN4_KGV_v1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
