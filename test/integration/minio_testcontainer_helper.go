//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sandeepkv93/invotrac/internal/service"
)

const (
	defaultMinioTestImage = "docker.io/minio/minio:RELEASE.2025-09-07T16-13-09Z"
	minioTestUser         = "minioadmin"
	minioTestPassword     = "minioadmin"
)

// exportBucketEnv is a throwaway MinIO server with an export store pointed
// at a bucket that does not exist yet.
type exportBucketEnv struct {
	bucket string
	store  *service.MinIOExportStore
	client *minio.Client
}

func newExportBucketEnv(t *testing.T) *exportBucketEnv {
	t.Helper()
	endpoint := startMinIO(t)
	bucket := fmt.Sprintf("exports-it-%d", time.Now().UnixNano())

	store, err := service.NewMinIOExportStore(endpoint, minioTestUser, minioTestPassword, bucket, false)
	if err != nil {
		t.Fatalf("create minio export store: %v", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(minioTestUser, minioTestPassword, ""),
	})
	if err != nil {
		t.Fatalf("create minio verification client: %v", err)
	}
	waitForMinIO(t, client)

	return &exportBucketEnv{bucket: bucket, store: store, client: client}
}

func startMinIO(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	image := strings.TrimSpace(os.Getenv("MINIO_TEST_IMAGE"))
	if image == "" {
		image = defaultMinioTestImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: image,
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioTestUser,
				"MINIO_ROOT_PASSWORD": minioTestPassword,
			},
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data", "--address", ":9000"},
			WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start minio container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve minio host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		t.Fatalf("resolve minio port: %v", err)
	}
	return net.JoinHostPort(host, port.Port())
}

// waitForMinIO polls until the server answers API calls; the listening port
// opens before MinIO is ready to serve.
func waitForMinIO(t *testing.T, client *minio.Client) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := client.ListBuckets(ctx)
		cancel()
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("minio never became ready: %v", err)
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func (e *exportBucketEnv) statObject(t *testing.T, key string) minio.ObjectInfo {
	t.Helper()
	obj, err := e.client.StatObject(context.Background(), e.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		t.Fatalf("stat export %q: %v", key, err)
	}
	return obj
}

func isObjectNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}
