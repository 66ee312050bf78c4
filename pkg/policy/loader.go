package policy

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
)

// LoadFile reads PodSecurityPolicy manifests from a single YAML file.
// Multi-document files are supported; empty documents are skipped.
func LoadFile(path string) ([]podsecv1alpha1.PodSecurityPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy file %q", path)
	}

	var policies []podsecv1alpha1.PodSecurityPolicy
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(data)))
	for {
		doc, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to split policy documents in %q", path)
		}
		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}
		var p podsecv1alpha1.PodSecurityPolicy
		if err := yaml.UnmarshalStrict(doc, &p); err != nil {
			return nil, errors.Wrapf(err, "failed to parse policy document in %q", path)
		}
		policies = append(policies, p)
	}
	return policies, nil
}

// LoadDir reads PodSecurityPolicy manifests from every .yaml/.yml file in
// dir, in lexical order.
func LoadDir(dir string) ([]podsecv1alpha1.PodSecurityPolicy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy directory %q", dir)
	}

	var policies []podsecv1alpha1.PodSecurityPolicy
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		loaded, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		policies = append(policies, loaded...)
	}
	return policies, nil
}
