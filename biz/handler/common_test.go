package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/biz/service/rm"
	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/lock"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, consts.StatusOK},
		{"not found", errs.NotFound("gid %s", "x"), consts.StatusNotFound},
		{"ambiguous", &rm.AmbiguousError{}, consts.StatusConflict},
		{"config", errs.Config(errors.New("bad json")), consts.StatusBadRequest},
		{"operation", errs.OperationFailed(errors.New("timeout")), consts.StatusBadGateway},
		{"lock busy", errs.OperationFailed(fmt.Errorf("lock datastore 1: %w", lock.ErrTimeout)), consts.StatusServiceUnavailable},
		{"file", errs.File(errors.New("disk full")), consts.StatusInternalServerError},
		{"wrapped", fmt.Errorf("download: %w", errs.NotFound("gid")), consts.StatusNotFound},
		{"plain", errors.New("boom"), consts.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusOf(tc.err); got != tc.want {
				t.Fatalf("StatusOf(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestDatastoreViewMasksSecrets(t *testing.T) {
	view := newDatastoreView(catalog.DatastoreRecord{
		ID:     3,
		Kind:   "s3",
		Config: []byte(`{"bucket":"b","access_key":"AK","secret_key":"SK"}`),
	})
	var fields map[string]string
	if err := json.Unmarshal(view.Config, &fields); err != nil {
		t.Fatalf("unmarshal masked config: %v", err)
	}
	if fields["secret_key"] != "******" {
		t.Fatalf("secret not masked: %q", fields["secret_key"])
	}
	if fields["bucket"] != "b" || fields["access_key"] != "AK" {
		t.Fatalf("unexpected fields %v", fields)
	}

	opaque := newDatastoreView(catalog.DatastoreRecord{ID: 4, Kind: "custom", Config: []byte("not json")})
	if opaque.Config != nil {
		t.Fatalf("non-JSON config should be omitted, got %s", opaque.Config)
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID(" 12 "); err != nil || id != 12 {
		t.Fatalf("parseID(12) = %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "abc"} {
		if _, err := parseID(raw); err == nil {
			t.Fatalf("parseID(%q) should fail", raw)
		}
	}
}
