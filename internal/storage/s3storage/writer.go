package s3storage

import "io"

// sequentialWriterAt adapts an io.Writer for s3manager.Downloader,
// offsets are ignored so the downloader must run with a concurrency of 1
type sequentialWriterAt struct {
	w io.Writer
}

func (sw sequentialWriterAt) WriteAt(p []byte, _ int64) (n int, err error) {
	return sw.w.Write(p)
}
