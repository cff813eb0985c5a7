package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Question images come straight from editors' phones and easily exceed the
// blob-storage object limit, so they are downscaled and recompressed before
// upload.

// CompressImageMaxBytes is the target ceiling for stored question images.
const CompressImageMaxBytes = 500 * 1024

// CompressImage rewrites the image at srcPath into dstPath, capping the
// longer edge at maxEdge pixels and re-encoding at a reduced quality.
// Returns the size of the compressed file.
func CompressImage(srcPath, dstPath string, maxEdge int) (int64, error) {
	if maxEdge <= 0 {
		maxEdge = 1280
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return 0, fmt.Errorf("create image output dir: %w", err)
	}

	// Keep aspect ratio; only shrink, never upscale.
	scale := fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", maxEdge, maxEdge)

	err := ffmpeg.Input(srcPath).
		Output(dstPath, ffmpeg.KwArgs{
			"vf":  scale,
			"q:v": "5",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return 0, fmt.Errorf("compress image: %w", err)
	}

	info, err := os.Stat(dstPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ImageInfo holds the probed dimensions of an uploaded image.
type ImageInfo struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Size   int64 `json:"size"`
}

// GetImageInfo probes an image file with ffprobe.
func GetImageInfo(path string) (*ImageInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("image file missing: %w", err)
	}

	jsonOutput, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe image: %w", err)
	}

	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	info := &ImageInfo{Size: fileInfo.Size()}
	for _, stream := range result.Streams {
		if stream.CodecType == "video" { // ffprobe reports still images as a video stream
			info.Width = stream.Width
			info.Height = stream.Height
			break
		}
	}
	return info, nil
}
