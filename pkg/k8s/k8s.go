// Package k8s wraps the Kubernetes client plumbing the pod-facing commands
// share: clientset construction, kubeconfig context handling, pod listing,
// log streaming, and exec.
package k8s

import (
	"context"
	"fmt"
	"io"
	"os"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
	"k8s.io/client-go/tools/remotecommand"
)

// DefaultKubeconfigPath returns the kubeconfig the CLI operates on,
// honoring KUBECONFIG.
func DefaultKubeconfigPath() string {
	if p := os.Getenv("KUBECONFIG"); p != "" {
		return p
	}
	return clientcmd.NewDefaultClientConfigLoadingRules().GetDefaultFilename()
}

// RestConfig builds a rest config from the kubeconfig at path, or the
// default location when path is empty.
func RestConfig(path string) (*rest.Config, error) {
	if path == "" {
		path = DefaultKubeconfigPath()
	}
	cfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, fmt.Errorf("failed to build config from kubeconfig: %w", err)
	}
	return cfg, nil
}

// Clientset builds a typed clientset from the kubeconfig at path.
func Clientset(path string) (*kubernetes.Clientset, *rest.Config, error) {
	cfg, err := RestConfig(path)
	if err != nil {
		return nil, nil, err
	}
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cs, cfg, nil
}

// CurrentContext returns the current context name of the kubeconfig.
func CurrentContext(path string) (string, error) {
	if path == "" {
		path = DefaultKubeconfigPath()
	}
	cfg, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if cfg.CurrentContext == "" {
		return "", fmt.Errorf("no current context set in %q", path)
	}
	return cfg.CurrentContext, nil
}

// SetContext writes (or replaces) a cluster entry plus context in the
// kubeconfig and switches the current context to it.
func SetContext(path, contextName, server string, caData []byte, execArgs []string) error {
	if path == "" {
		path = DefaultKubeconfigPath()
	}

	cfg, err := clientcmd.LoadFromFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		cfg = clientcmdapi.NewConfig()
	}

	cfg.Clusters[contextName] = &clientcmdapi.Cluster{
		Server:                   server,
		CertificateAuthorityData: caData,
	}
	authInfo := &clientcmdapi.AuthInfo{}
	if len(execArgs) > 0 {
		authInfo.Exec = &clientcmdapi.ExecConfig{
			APIVersion:      "client.authentication.k8s.io/v1beta1",
			Command:         execArgs[0],
			Args:            execArgs[1:],
			InteractiveMode: clientcmdapi.IfAvailableExecInteractiveMode,
		}
	}
	cfg.AuthInfos[contextName] = authInfo
	cfg.Contexts[contextName] = &clientcmdapi.Context{
		Cluster:  contextName,
		AuthInfo: contextName,
	}
	cfg.CurrentContext = contextName

	return clientcmd.WriteToFile(*cfg, path)
}

// ListPods lists the pods of a namespace matching the label selector.
func ListPods(ctx context.Context, cs kubernetes.Interface, namespace, selector string) ([]corev1.Pod, error) {
	pods, err := cs.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, err
	}
	return pods.Items, nil
}

// PodLogs streams the logs of one pod container to w.
func PodLogs(ctx context.Context, cs kubernetes.Interface, namespace, pod, container string, w io.Writer) error {
	req := cs.CoreV1().Pods(namespace).GetLogs(pod, &corev1.PodLogOptions{
		Container: container,
	})
	stream, err := req.Stream(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()
	_, err = io.Copy(w, stream)
	return err
}

// Exec runs command inside a pod container, wiring the standard streams.
func Exec(ctx context.Context, cs *kubernetes.Clientset, cfg *rest.Config, namespace, pod, container string, command []string, stdin io.Reader, stdout, stderr io.Writer) error {
	req := cs.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(pod).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdin:     stdin != nil,
			Stdout:    stdout != nil,
			Stderr:    stderr != nil,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(cfg, "POST", req.URL())
	if err != nil {
		return err
	}
	return executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	})
}
