package request

import (
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/sets"
)

// PodSecurityRequest is the security-sensitive projection of a pod spec.
// All slices are sorted so that two pods with the same security surface
// produce identical projections.
type PodSecurityRequest struct {
	// Name and Namespace identify the subject for diagnostics and auditing.
	Name      string
	Namespace string

	Privileged  bool
	HostNetwork bool
	HostPID     bool
	HostIPC     bool

	// AllowPrivilegeEscalation is nil when no container states a preference.
	AllowPrivilegeEscalation *bool

	// RunAsUser is nil when neither the pod nor any container requests a UID.
	RunAsUser *int64
	// RunAsGroup is nil when no primary GID is requested.
	RunAsGroup *int64
	// FSGroup is nil when the pod does not request one.
	FSGroup *int64
	// SupplementalGroups lists requested supplemental GIDs.
	SupplementalGroups []int64

	// SELinux is the requested SELinux context, nil when unset.
	SELinux *corev1.SELinuxOptions

	// Volumes lists the distinct volume source kinds referenced by the pod.
	Volumes []string

	// AddedCapabilities is the union of capabilities added by any container.
	AddedCapabilities []string
	// DroppedCapabilities is the intersection of capabilities dropped by all
	// containers; a capability only counts as dropped when every container
	// drops it.
	DroppedCapabilities []string

	// HostPorts lists every host port requested by any container.
	HostPorts []int32
}

// FromPod derives the security projection of the given pod. The pod is not
// retained; the returned request is an independent value.
func FromPod(pod *corev1.Pod) *PodSecurityRequest {
	r := &PodSecurityRequest{
		Name:        pod.Name,
		Namespace:   pod.Namespace,
		HostNetwork: pod.Spec.HostNetwork,
		HostPID:     pod.Spec.HostPID,
		HostIPC:     pod.Spec.HostIPC,
	}

	if sc := pod.Spec.SecurityContext; sc != nil {
		r.RunAsUser = copyInt64(sc.RunAsUser)
		r.RunAsGroup = copyInt64(sc.RunAsGroup)
		r.FSGroup = copyInt64(sc.FSGroup)
		if len(sc.SupplementalGroups) > 0 {
			r.SupplementalGroups = append([]int64(nil), sc.SupplementalGroups...)
			sort.Slice(r.SupplementalGroups, func(i, j int) bool {
				return r.SupplementalGroups[i] < r.SupplementalGroups[j]
			})
		}
		if sc.SELinuxOptions != nil {
			opts := *sc.SELinuxOptions
			r.SELinux = &opts
		}
	}

	volumes := sets.New[string]()
	for i := range pod.Spec.Volumes {
		volumes.Insert(VolumeSourceKind(&pod.Spec.Volumes[i]))
	}
	r.Volumes = sets.List(volumes)

	added := sets.New[string]()
	var dropped sets.Set[string]
	ports := []int32{}

	containers := make([]corev1.Container, 0, len(pod.Spec.Containers)+len(pod.Spec.InitContainers))
	containers = append(containers, pod.Spec.InitContainers...)
	containers = append(containers, pod.Spec.Containers...)

	for i := range containers {
		c := &containers[i]
		for _, p := range c.Ports {
			if p.HostPort != 0 {
				ports = append(ports, p.HostPort)
			}
		}

		sc := c.SecurityContext
		if sc == nil {
			// a container without a security context drops nothing
			dropped = sets.New[string]()
			continue
		}
		if sc.Privileged != nil && *sc.Privileged {
			r.Privileged = true
		}
		if sc.AllowPrivilegeEscalation != nil {
			if r.AllowPrivilegeEscalation == nil || *sc.AllowPrivilegeEscalation {
				r.AllowPrivilegeEscalation = copyBool(sc.AllowPrivilegeEscalation)
			}
		}
		// container-level IDs participate in the projection when the pod
		// level leaves them unset
		if r.RunAsUser == nil && sc.RunAsUser != nil {
			r.RunAsUser = copyInt64(sc.RunAsUser)
		}
		if r.RunAsGroup == nil && sc.RunAsGroup != nil {
			r.RunAsGroup = copyInt64(sc.RunAsGroup)
		}
		if r.SELinux == nil && sc.SELinuxOptions != nil {
			opts := *sc.SELinuxOptions
			r.SELinux = &opts
		}

		if caps := sc.Capabilities; caps != nil {
			for _, name := range caps.Add {
				added.Insert(string(name))
			}
			drops := sets.New[string]()
			for _, name := range caps.Drop {
				drops.Insert(string(name))
			}
			if dropped == nil {
				dropped = drops
			} else {
				dropped = dropped.Intersection(drops)
			}
		} else {
			dropped = sets.New[string]()
		}
	}

	r.AddedCapabilities = sets.List(added)
	if dropped != nil {
		r.DroppedCapabilities = sets.List(dropped)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	r.HostPorts = ports

	return r
}

// VolumeSourceKind names the volume source set on v, matching the spellings
// used in policy manifests (configMap, emptyDir, hostPath, ...). Unknown
// sources are reported as "unknown" so they can never satisfy an allow list.
func VolumeSourceKind(v *corev1.Volume) string {
	switch {
	case v.HostPath != nil:
		return "hostPath"
	case v.EmptyDir != nil:
		return "emptyDir"
	case v.Secret != nil:
		return "secret"
	case v.ConfigMap != nil:
		return "configMap"
	case v.PersistentVolumeClaim != nil:
		return "persistentVolumeClaim"
	case v.DownwardAPI != nil:
		return "downwardAPI"
	case v.Projected != nil:
		return "projected"
	case v.NFS != nil:
		return "nfs"
	case v.ISCSI != nil:
		return "iscsi"
	case v.Glusterfs != nil:
		return "glusterfs"
	case v.RBD != nil:
		return "rbd"
	case v.CephFS != nil:
		return "cephFS"
	case v.FC != nil:
		return "fc"
	case v.FlexVolume != nil:
		return "flexVolume"
	case v.AzureFile != nil:
		return "azureFile"
	case v.AzureDisk != nil:
		return "azureDisk"
	case v.VsphereVolume != nil:
		return "vsphereVolume"
	case v.Quobyte != nil:
		return "quobyte"
	case v.PortworxVolume != nil:
		return "portworxVolume"
	case v.ScaleIO != nil:
		return "scaleIO"
	case v.StorageOS != nil:
		return "storageos"
	case v.CSI != nil:
		return "csi"
	case v.Ephemeral != nil:
		return "ephemeral"
	case v.GitRepo != nil:
		return "gitRepo"
	case v.Image != nil:
		return "image"
	}
	return "unknown"
}

// Subject renders a namespace/name identifier for diagnostics.
func (r *PodSecurityRequest) Subject() string {
	if r.Name == "" {
		return fmt.Sprintf("%s/<generated>", r.Namespace)
	}
	return fmt.Sprintf("%s/%s", r.Namespace, r.Name)
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
