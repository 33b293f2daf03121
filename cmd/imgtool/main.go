package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/denismitr/imagine/cmd/initialize"
	"github.com/denismitr/imagine/internal/media/manipulator"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	in       = flag.String("in", "", "source image path")
	out      = flag.String("out", "", "destination path, its extension picks the format")
	width    = flag.String("width", "", "target width, digits or AUTO, also accepts the WxH shorthand")
	height   = flag.String("height", "", "target height, digits or AUTO")
	mode     = flag.String("mode", string(manipulator.ModeResize), "resize, fit or crop")
	position = flag.String("position", "", "crop position, e.g. top-left")
	crop     = flag.String("crop", "", "explicit crop box x1,x2,y1,y2 applied before scaling")
	backend  = flag.String("backend", string(manipulator.RasterBackend), "raster or scaler")
	upscale  = flag.Bool("upscale", false, "allow fit and crop to enlarge smaller images")
	auto     = flag.Bool("auto-quality", false, "pick jpeg quality from the output size")
)

func main() {
	flag.Parse()

	log := initialize.Logger()

	if err := run(log); err != nil {
		log.Fatalln(err)
	}
}

func run(log *logrus.Logger) error {
	if *in == "" {
		return errors.New("-in is required")
	}

	img, err := manipulator.NewImage(manipulator.Backend(*backend))
	if err != nil {
		return err
	}

	if err := img.LoadImage(*in); err != nil {
		return err
	}

	fields := logrus.Fields{
		"source":      *in,
		"size":        fmt.Sprintf("%dx%d", img.Width(), img.Height()),
		"extension":   img.Extension(),
		"transparent": img.IsTransparent(),
	}

	if *out == "" {
		log.WithFields(fields).Infoln("inspected")
		return nil
	}

	if *crop != "" {
		box, err := parseBox(*crop)
		if err != nil {
			return err
		}

		if err := img.Crop(box[0], box[1], box[2], box[3]); err != nil {
			return err
		}
	}

	size, err := manipulator.ParseSize(*width, *height)
	if err != nil {
		return err
	}

	switch manipulator.Mode(*mode) {
	case manipulator.ModeResize:
		err = img.Resize(size)
	case manipulator.ModeFit:
		err = img.ScaleToFit(size, *upscale)
	case manipulator.ModeCrop:
		p, pErr := manipulator.ParseCropPosition(*position)
		if pErr != nil {
			return pErr
		}

		err = img.ScaleAndCrop(size, *upscale, p)
	default:
		return errors.Errorf("unknown mode %q", *mode)
	}

	if err != nil {
		return err
	}

	if err := img.SaveAs(*out, *auto); err != nil {
		return err
	}

	fields["result"] = fmt.Sprintf("%dx%d", img.Width(), img.Height())
	fields["destination"] = *out
	log.WithFields(fields).Infoln("saved")

	return nil
}

func parseBox(v string) ([4]int, error) {
	var box [4]int

	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return box, errors.Errorf("crop box %q must be x1,x2,y1,y2", v)
	}

	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return box, errors.Wrapf(err, "crop box %q", v)
		}

		box[i] = n
	}

	return box, nil
}
