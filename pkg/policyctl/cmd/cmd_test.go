package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const restrictedYAML = `apiVersion: podsecurity.t-caas.telekom.com/v1alpha1
kind: PodSecurityPolicy
metadata:
  name: restricted
spec:
  runAsUser:
    rule: RunAsAny
  supplementalGroups:
    rule: RunAsAny
  fsGroup:
    rule: RunAsAny
  seLinux:
    rule: RunAsAny
  volumes:
    - configMap
    - secret
`

const privilegedYAML = `apiVersion: podsecurity.t-caas.telekom.com/v1alpha1
kind: PodSecurityPolicy
metadata:
  name: privileged
spec:
  privileged: true
  priority: 10
  runAsUser:
    rule: RunAsAny
  supplementalGroups:
    rule: RunAsAny
  fsGroup:
    rule: RunAsAny
  seLinux:
    rule: RunAsAny
  volumes:
    - "*"
`

const brokenYAML = `apiVersion: podsecurity.t-caas.telekom.com/v1alpha1
kind: PodSecurityPolicy
metadata:
  name: broken
spec:
  runAsUser:
    rule: MustRunAs
  supplementalGroups:
    rule: RunAsAny
  fsGroup:
    rule: RunAsAny
  seLinux:
    rule: RunAsAny
`

const podYAML = `apiVersion: v1
kind: Pod
metadata:
  name: web
  namespace: team-a
spec:
  containers:
    - name: app
      image: nginx
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := NewRootCommand(Config{OutputWriter: out})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "restricted.yaml", restrictedYAML)

	out, err := runCommand(t, "validate", dir)
	if err != nil {
		t.Fatalf("unexpected err: %v\n%s", err, out)
	}
	if !strings.Contains(out, "restricted: OK") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestValidateCommandInvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.yaml", brokenYAML)

	out, err := runCommand(t, "validate", path)
	if err == nil {
		t.Fatalf("expected error for invalid policy")
	}
	if !strings.Contains(out, "broken: INVALID") || !strings.Contains(out, "MustRunAs requires at least one range") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", restrictedYAML)
	writeFile(t, dir, "b.yaml", privilegedYAML)

	out, err := runCommand(t, "list", dir)
	if err != nil {
		t.Fatalf("unexpected err: %v\n%s", err, out)
	}
	// privileged has priority 10, so it is evaluated first
	privIdx := strings.Index(out, "privileged")
	restrIdx := strings.Index(out, "restricted")
	if privIdx == -1 || restrIdx == -1 || privIdx > restrIdx {
		t.Fatalf("unexpected evaluation order:\n%s", out)
	}
}

func TestEvaluateCommandAdmitted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "restricted.yaml", restrictedYAML)
	podPath := writeFile(t, dir, "pod.yaml", podYAML)

	out, err := runCommand(t, "evaluate", dir, "--pod", podPath, "--user", "jane")
	if err != nil {
		t.Fatalf("unexpected err: %v\n%s", err, out)
	}
	if !strings.Contains(out, `ADMITTED by policy "restricted"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestEvaluateCommandDenied(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "restricted.yaml", restrictedYAML)
	podPath := writeFile(t, dir, "pod.yaml", `apiVersion: v1
kind: Pod
metadata:
  name: root
  namespace: team-a
spec:
  hostNetwork: true
  containers:
    - name: app
      image: nginx
      securityContext:
        privileged: true
`)

	out, err := runCommand(t, "evaluate", dir, "--pod", podPath, "--user", "jane")
	if err == nil {
		t.Fatalf("expected non-nil error for denied pod")
	}
	if !strings.Contains(out, "DENIED") || !strings.Contains(out, "privileged true not allowed") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestEvaluateCommandRestrictedAuthorization(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "restricted.yaml", restrictedYAML)
	writeFile(t, dir, "privileged.yaml", privilegedYAML)
	podPath := writeFile(t, dir, "pod.yaml", podYAML)

	// only the privileged policy is authorized, so it admits despite the
	// restricted policy ranking equal or lower
	out, err := runCommand(t, "evaluate", dir, "--pod", podPath, "--user", "jane", "--policy", "privileged")
	if err != nil {
		t.Fatalf("unexpected err: %v\n%s", err, out)
	}
	if !strings.Contains(out, `ADMITTED by policy "privileged"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}
