// Package retrofit gives every known wallpaper a crop for a newly added
// aspect ratio.
//
// Images whose closest existing crop was adjusted by hand get the new crop
// re-centered on that adjustment and are reported for review. All other
// images get the cropper's default. Images that already hold a crop for the
// ratio are left alone, so running twice changes nothing.
package retrofit

import (
	"context"
	"log/slog"
	"sort"

	"wallcrop/internal/cropper"
	"wallcrop/internal/geometry"
	"wallcrop/internal/logging"
	"wallcrop/internal/services"
	"wallcrop/internal/store"
	"wallcrop/internal/wallpaper"
)

// Result reports what a retrofit changed.
type Result struct {
	// Updated counts images that received a crop for the new ratio.
	Updated int
	// Review lists, sorted, the filenames whose crop was re-centered.
	Review []string
}

// Run computes a crop for ratio on every record in s that lacks one. closest
// is the configured ratio nearest to ratio, or nil when there is none. The
// store is only modified in memory, and only once every record has been
// computed; the caller saves it.
func Run(ctx context.Context, s *store.Store, ratio geometry.AspectRatio, closest *geometry.AspectRatio, logger *slog.Logger) (Result, error) {
	log := logging.WithContext(services.WithStage(ctx, "retrofit"), logging.NewComponentLogger(logger, "retrofit"))

	var result Result
	var updated []wallpaper.Info
	for _, info := range s.Records() {
		if info.HasGeometry(ratio) {
			continue
		}
		g, recentered, err := cropFor(info, ratio, closest)
		if err != nil {
			return Result{}, services.Wrap(services.ErrInput, "retrofit", "crop", info.Filename, err)
		}
		updated = append(updated, info.WithGeometry(ratio, g))
		if recentered {
			result.Review = append(result.Review, info.Filename)
			log.Debug("re-centered on customised crop",
				logging.String(logging.FieldImage, info.Filename),
				logging.Any("crop", g))
		}
	}

	for _, info := range updated {
		s.Insert(info)
	}
	result.Updated = len(updated)
	sort.Strings(result.Review)
	log.Info("resolution retrofitted",
		logging.Any("ratio", ratio),
		logging.Int("updated", result.Updated),
		logging.Int("review", len(result.Review)))
	return result, nil
}

// cropFor returns the crop for ratio and whether it was re-centered on the
// recorded crop for closest.
func cropFor(info wallpaper.Info, ratio geometry.AspectRatio, closest *geometry.AspectRatio) (geometry.Geometry, bool, error) {
	c, err := info.Cropper()
	if err != nil {
		return geometry.Geometry{}, false, err
	}
	def, err := c.Crop(ratio)
	if err != nil {
		return geometry.Geometry{}, false, err
	}
	if closest == nil {
		return def, false, nil
	}

	closestDefault, err := c.Crop(*closest)
	if err != nil {
		return geometry.Geometry{}, false, err
	}
	dir := c.Direction(def)
	if dir != c.Direction(closestDefault) {
		return def, false, nil
	}
	recorded, err := info.Geometry(*closest)
	if err != nil {
		return geometry.Geometry{}, false, err
	}
	if recorded == closestDefault {
		return def, false, nil
	}
	return recenter(c, recorded, def, dir), true, nil
}

// recenter moves g so its midpoint on dir matches the midpoint of anchor.
func recenter(c *cropper.Cropper, anchor, g geometry.Geometry, dir geometry.Direction) geometry.Geometry {
	start, length, newLength := anchor.X, anchor.W, g.W
	if dir == geometry.DirectionY {
		start, length, newLength = anchor.Y, anchor.H, g.H
	}
	mid := float64(start) + float64(length)/2
	return c.Clamp(mid-float64(newLength)/2, dir, g.W, g.H)
}
