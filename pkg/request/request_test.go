package request

import (
	"reflect"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

func TestFromPodHostFlags(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "p", Namespace: "ns"},
		Spec: corev1.PodSpec{
			HostNetwork: true,
			HostPID:     true,
			Containers: []corev1.Container{{
				Name: "main",
				SecurityContext: &corev1.SecurityContext{
					Privileged: ptr.To(true),
				},
			}},
		},
	}

	r := FromPod(pod)
	if !r.HostNetwork || !r.HostPID || r.HostIPC {
		t.Fatalf("host flags not projected: %+v", r)
	}
	if !r.Privileged {
		t.Fatalf("expected privileged from container security context")
	}
	if r.Subject() != "ns/p" {
		t.Fatalf("unexpected subject %q", r.Subject())
	}
}

func TestFromPodIDsPreferPodLevel(t *testing.T) {
	pod := &corev1.Pod{
		Spec: corev1.PodSpec{
			SecurityContext: &corev1.PodSecurityContext{
				RunAsUser:          ptr.To(int64(1000)),
				FSGroup:            ptr.To(int64(2000)),
				SupplementalGroups: []int64{30, 10, 20},
			},
			Containers: []corev1.Container{{
				Name: "main",
				SecurityContext: &corev1.SecurityContext{
					RunAsUser: ptr.To(int64(0)),
				},
			}},
		},
	}

	r := FromPod(pod)
	if r.RunAsUser == nil || *r.RunAsUser != 1000 {
		t.Fatalf("pod-level runAsUser must win, got %v", r.RunAsUser)
	}
	if r.FSGroup == nil || *r.FSGroup != 2000 {
		t.Fatalf("fsGroup not projected, got %v", r.FSGroup)
	}
	if !reflect.DeepEqual(r.SupplementalGroups, []int64{10, 20, 30}) {
		t.Fatalf("supplemental groups not sorted: %v", r.SupplementalGroups)
	}
}

func TestFromPodContainerIDsWhenPodUnset(t *testing.T) {
	pod := &corev1.Pod{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{
				Name: "main",
				SecurityContext: &corev1.SecurityContext{
					RunAsUser: ptr.To(int64(42)),
				},
			}},
		},
	}

	r := FromPod(pod)
	if r.RunAsUser == nil || *r.RunAsUser != 42 {
		t.Fatalf("container runAsUser should fill unset pod level, got %v", r.RunAsUser)
	}
}

func TestFromPodVolumes(t *testing.T) {
	pod := &corev1.Pod{
		Spec: corev1.PodSpec{
			Volumes: []corev1.Volume{
				{Name: "a", VolumeSource: corev1.VolumeSource{HostPath: &corev1.HostPathVolumeSource{Path: "/"}}},
				{Name: "b", VolumeSource: corev1.VolumeSource{ConfigMap: &corev1.ConfigMapVolumeSource{}}},
				{Name: "c", VolumeSource: corev1.VolumeSource{ConfigMap: &corev1.ConfigMapVolumeSource{}}},
				{Name: "d", VolumeSource: corev1.VolumeSource{}},
			},
		},
	}

	r := FromPod(pod)
	// sorted, de-duplicated, with the empty source reported as unknown
	if !reflect.DeepEqual(r.Volumes, []string{"configMap", "hostPath", "unknown"}) {
		t.Fatalf("unexpected volume kinds: %v", r.Volumes)
	}
}

func TestFromPodCapabilities(t *testing.T) {
	pod := &corev1.Pod{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name: "a",
					SecurityContext: &corev1.SecurityContext{
						Capabilities: &corev1.Capabilities{
							Add:  []corev1.Capability{"NET_ADMIN"},
							Drop: []corev1.Capability{"ALL", "NET_RAW"},
						},
					},
				},
				{
					Name: "b",
					SecurityContext: &corev1.SecurityContext{
						Capabilities: &corev1.Capabilities{
							Add:  []corev1.Capability{"SYS_TIME"},
							Drop: []corev1.Capability{"ALL"},
						},
					},
				},
			},
		},
	}

	r := FromPod(pod)
	if !reflect.DeepEqual(r.AddedCapabilities, []string{"NET_ADMIN", "SYS_TIME"}) {
		t.Fatalf("added capabilities must be the union: %v", r.AddedCapabilities)
	}
	// only ALL is dropped by every container
	if !reflect.DeepEqual(r.DroppedCapabilities, []string{"ALL"}) {
		t.Fatalf("dropped capabilities must be the intersection: %v", r.DroppedCapabilities)
	}
}

func TestFromPodDropIntersectionWithBareContainer(t *testing.T) {
	pod := &corev1.Pod{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name: "hardened",
					SecurityContext: &corev1.SecurityContext{
						Capabilities: &corev1.Capabilities{Drop: []corev1.Capability{"ALL"}},
					},
				},
				{Name: "bare"},
			},
		},
	}

	r := FromPod(pod)
	// the bare container drops nothing, so the pod as a whole drops nothing
	if len(r.DroppedCapabilities) != 0 {
		t.Fatalf("expected empty drop intersection, got %v", r.DroppedCapabilities)
	}
}

func TestFromPodHostPorts(t *testing.T) {
	pod := &corev1.Pod{
		Spec: corev1.PodSpec{
			InitContainers: []corev1.Container{{
				Name:  "init",
				Ports: []corev1.ContainerPort{{HostPort: 9000}},
			}},
			Containers: []corev1.Container{{
				Name: "main",
				Ports: []corev1.ContainerPort{
					{HostPort: 443},
					{ContainerPort: 8080}, // no host port
					{HostPort: 80},
				},
			}},
		},
	}

	r := FromPod(pod)
	if !reflect.DeepEqual(r.HostPorts, []int32{80, 443, 9000}) {
		t.Fatalf("unexpected host ports: %v", r.HostPorts)
	}
}

func TestFromPodAllowPrivilegeEscalation(t *testing.T) {
	pod := &corev1.Pod{Spec: corev1.PodSpec{Containers: []corev1.Container{{Name: "a"}}}}
	if r := FromPod(pod); r.AllowPrivilegeEscalation != nil {
		t.Fatalf("expected nil preference, got %v", *r.AllowPrivilegeEscalation)
	}

	pod.Spec.Containers = []corev1.Container{
		{Name: "a", SecurityContext: &corev1.SecurityContext{AllowPrivilegeEscalation: ptr.To(false)}},
		{Name: "b", SecurityContext: &corev1.SecurityContext{AllowPrivilegeEscalation: ptr.To(true)}},
	}
	r := FromPod(pod)
	// any container asking for escalation makes the pod ask for it
	if r.AllowPrivilegeEscalation == nil || !*r.AllowPrivilegeEscalation {
		t.Fatalf("expected true preference, got %v", r.AllowPrivilegeEscalation)
	}
}

func TestVolumeSourceKind(t *testing.T) {
	cases := []struct {
		vol  corev1.Volume
		want string
	}{
		{corev1.Volume{VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}}}, "emptyDir"},
		{corev1.Volume{VolumeSource: corev1.VolumeSource{Secret: &corev1.SecretVolumeSource{}}}, "secret"},
		{corev1.Volume{VolumeSource: corev1.VolumeSource{PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{}}}, "persistentVolumeClaim"},
		{corev1.Volume{VolumeSource: corev1.VolumeSource{CSI: &corev1.CSIVolumeSource{}}}, "csi"},
		{corev1.Volume{VolumeSource: corev1.VolumeSource{Ephemeral: &corev1.EphemeralVolumeSource{}}}, "ephemeral"},
		{corev1.Volume{}, "unknown"},
	}
	for _, tc := range cases {
		if got := VolumeSourceKind(&tc.vol); got != tc.want {
			t.Errorf("VolumeSourceKind = %q, want %q", got, tc.want)
		}
	}
}
