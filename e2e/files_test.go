//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tonimelisma/yadisk-go/internal/disk"
)

var _ = Describe("File operations", func() {
	var (
		root      string
		localPath string
		content   []byte
	)

	BeforeEach(func() {
		t := GinkgoTB()
		root = env.TempFolder(t)
		localPath, content = env.TestFile(t)
	})

	It("uploads a text file with a text MIME type", func() {
		remote := root + "/test_file.txt"

		resp, err := env.Client.UploadFile(ctx, remote, localPath, false)
		expectDone(resp, err, http.StatusCreated, "upload "+remote)
		expectPresent(remote)

		res := metadata(remote)
		Expect(res.IsFile()).To(BeTrue())
		Expect(res.MimeType).To(HavePrefix("text/plain"))
	})

	It("downloads exactly what was uploaded", func() {
		remote := root + "/roundtrip.txt"

		resp, err := env.Client.UploadFile(ctx, remote, localPath, false)
		expectDone(resp, err, http.StatusCreated, "upload "+remote)
		expectPresent(remote)

		target := filepath.Join(GinkgoT().TempDir(), "downloaded.txt")
		n, err := env.Client.DownloadFile(ctx, remote, target)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(len(content))))

		got, err := os.ReadFile(target)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(content))
	})

	It("round-trips an empty file", func() {
		remote := root + "/empty.bin"

		upload(remote, []byte{}, false)
		Expect(metadata(remote).Size).To(BeZero())
		eventuallyContent(remote, []byte{})
	})

	It("refuses to overwrite unless asked to", func() {
		remote := root + "/overwrite.txt"
		upload(remote, []byte("first version\n"), false)

		_, err := env.Client.Upload(ctx, remote, bytesReader([]byte("ignored")), 7, false)
		Expect(err).To(MatchError(disk.ErrNoTransferLink))

		var linkErr *disk.LinkError
		Expect(errors.As(err, &linkErr)).To(BeTrue())
		Expect(linkErr.StatusCode).To(Equal(http.StatusConflict))

		second := []byte("second version, a bit longer\n")
		resp, err := env.Client.Upload(ctx, remote, bytesReader(second), int64(len(second)), true)
		expectDone(resp, err, http.StatusCreated, "overwrite "+remote)
		eventuallyContent(remote, second)
	})

	It("deletes a file permanently", func() {
		remote := root + "/delete_me.txt"
		upload(remote, content, false)

		resp, err := env.Client.Delete(ctx, remote, true)
		expectDone(resp, err, http.StatusNoContent, "delete "+remote)
		expectAbsent(remote)
	})

	It("moves a file between folders", func() {
		from := root + "/source.txt"
		dstDir := root + "/dest"
		to := dstDir + "/moved.txt"

		upload(from, content, false)

		resp, err := env.Client.CreateFolder(ctx, dstDir)
		expectStatus(resp, err, http.StatusCreated, "create "+dstDir)
		expectPresent(dstDir)

		resp, err = env.Client.Move(ctx, from, to, false)
		expectDone(resp, err, http.StatusCreated, "move "+from)

		expectPresent(to)
		expectAbsent(from)
		eventuallyContent(to, content)
	})

	It("copies a file and keeps the source", func() {
		from := root + "/original.txt"
		to := root + "/copy.txt"

		upload(from, content, false)

		resp, err := env.Client.Copy(ctx, from, to, false)
		expectDone(resp, err, http.StatusCreated, "copy "+from)

		expectPresent(to)
		Expect(metadata(from).IsFile()).To(BeTrue())
		eventuallyContent(to, content)
	})

	It("reports a missing download link for a missing file", func() {
		_, err := env.Client.Download(ctx, root+"/nothing-here.txt", io.Discard)
		Expect(err).To(MatchError(disk.ErrNoTransferLink))
	})
})

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

// download fetches path into memory.
func download(path string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := env.Client.Download(ctx, path, &buf); err != nil {
		return nil, err
	}

	return append([]byte{}, buf.Bytes()...), nil
}
