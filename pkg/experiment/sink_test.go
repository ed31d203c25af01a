package experiment

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/ftroute/pkg/routing"
)

func sampleRecord() Record {
	return Record{
		ID: "rec-1", RunID: "run-1", Instance: 2, Trial: 3,
		N: 4, K: 4, R: 2, H: 0,
		Mode:            ModeDifferentBranches,
		Branches:        1,
		Source:          "(0,0,0,1)",
		Sink:            "(3,2,1,0)",
		UFBuildTime:     0.0012345678,
		UFConnected:     false,
		UFConnectedTime: 0.0000004,
		Outcomes: []Outcome{
			{Algorithm: routing.BFS, PathLength: -1, Seconds: 0.25},
			{Algorithm: routing.Hybrid, Connected: true, PathLength: 5, Seconds: 0.5, UsedFallback: true},
		},
	}
}

func TestHeaderAndRow(t *testing.T) {
	algs := []routing.Algorithm{routing.BFS, routing.BidirectionalBFS, routing.Hybrid}
	header := Header(algs)
	row := sampleRecord().Row(algs)
	require.Len(t, row, len(header))

	got := make(map[string]string, len(header))
	for i, col := range header {
		got[col] = row[i]
	}
	assert.Equal(t, "0.001235", got["uf_build_time"])
	assert.Equal(t, "0.000000", got["uf_connected_time"])
	assert.Equal(t, "false", got["bfs_connected"])
	assert.Equal(t, "-1", got["bfs_path_length"])
	assert.Equal(t, "0.250000", got["bfs_time"])
	assert.Equal(t, "-1", got["bidirectional_bfs_path_length"], "missing outcome renders as not found")
	assert.Equal(t, "5", got["hybrid_path_length"])
	assert.Equal(t, "true", got["hybrid_used_bfs"])
	assert.Equal(t, "different-branches", got["mode"])
	assert.NotContains(t, header, "bfs_used_bfs")
}

func TestCSVWriter(t *testing.T) {
	algs := []routing.Algorithm{routing.BFS, routing.Hybrid}

	var buf bytes.Buffer
	w := NewCSVWriter(&buf, algs)
	require.NoError(t, WriteAll(w, []Record{sampleRecord(), sampleRecord()}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header(algs), rows[0])

	buf.Reset()
	empty := NewCSVWriter(&buf, algs)
	require.NoError(t, empty.Close())
	assert.Equal(t, strings.Join(Header(algs), ",")+"\n", buf.String())
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAll(NewJSONLWriter(&buf), []Record{sampleRecord()}))

	var got Record
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, sampleRecord(), got)
}

func TestOpenSink_Compressed(t *testing.T) {
	cfg := OutputConfig{
		Path:     filepath.Join(t.TempDir(), "results.jsonl"),
		Format:   FormatJSONL,
		Compress: true,
	}
	sink, path, err := OpenSink(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Path+".sz", path)
	require.NoError(t, WriteAll(sink, []Record{sampleRecord(), sampleRecord()}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(snappy.NewReader(f))
	lines := 0
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		assert.Equal(t, "rec-1", rec.ID)
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, lines)
}

func TestOpenSink_PlainCSV(t *testing.T) {
	cfg := OutputConfig{Path: filepath.Join(t.TempDir(), "results.csv"), Format: FormatCSV}
	sink, path, err := OpenSink(cfg, []routing.Algorithm{routing.DFS})
	require.NoError(t, err)
	assert.Equal(t, cfg.Path, path)
	require.NoError(t, WriteAll(sink, []Record{sampleRecord()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,run_id,instance,trial"))

	_, _, err = OpenSink(OutputConfig{Path: filepath.Join(t.TempDir(), "no", "such", "dir.csv")}, nil)
	assert.Error(t, err)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestArchiver_Upload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(file, []byte("a,b\n1,2\n"), 0o600))

	fake := &fakePutter{}
	a := &Archiver{client: fake, bucket: "bucket", prefix: "rq1"}

	key, err := a.Upload(context.Background(), "run-9", file)
	require.NoError(t, err)
	assert.Equal(t, "rq1/run-9/results.csv", key)
	assert.Equal(t, "bucket", aws.ToString(fake.input.Bucket))
	assert.Equal(t, key, aws.ToString(fake.input.Key))
	assert.Equal(t, "run-9", fake.input.Metadata["run-id"])
	assert.Equal(t, "a,b\n1,2\n", string(fake.body))

	fake.err = errors.New("denied")
	_, err = a.Upload(context.Background(), "run-9", file)
	assert.ErrorContains(t, err, "s3://bucket/rq1/run-9/results.csv")

	_, err = a.Upload(context.Background(), "run-9", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewArchiver_StaticCredentials(t *testing.T) {
	a, err := NewArchiver(context.Background(), ArchiveConfig{
		Bucket:          "bucket",
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "run/x.csv", a.Key("run", "/tmp/x.csv"))
}
