package redhatrelease

import (
	"testing"

	"github.com/kongove/scylla-artifact-tests/osutil"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		content    string
		wantDistro string
	}{
		{
			name:       "centos 7",
			path:       "etc/centos-release",
			content:    "CentOS Linux release 7.2.1511 (Core)",
			wantDistro: "centos:7",
		},
		{
			name:       "rhel mapped to centos",
			path:       "etc/redhat-release",
			content:    "Red Hat Enterprise Linux Server release 7.2 (Maipo)",
			wantDistro: "centos:7",
		},
		{
			name:       "oracle linux",
			path:       "etc/oracle-release",
			content:    "Oracle Linux Server release 7.3",
			wantDistro: "oracle:7",
		},
		{
			name:       "fedora 22",
			path:       "etc/fedora-release",
			content:    "Fedora release 22 (Twenty Two)",
			wantDistro: "fedora:22",
		},
	}

	var d detector
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Detect(osutil.FilesMap{tt.path: []byte(tt.content)})
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if got == nil {
				t.Fatalf("Detect = nil, want %s", tt.wantDistro)
			}
			if got.String() != tt.wantDistro {
				t.Errorf("distro = %s, want %s", got.String(), tt.wantDistro)
			}
			if got.VersionFormat != "rpm" {
				t.Errorf("version format = %s, want rpm", got.VersionFormat)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	var d detector
	got, err := d.Detect(osutil.FilesMap{"etc/centos-release": []byte("not a release file")})
	if err != nil || got != nil {
		t.Fatalf("Detect = (%v, %v), want (nil, nil)", got, err)
	}
}
