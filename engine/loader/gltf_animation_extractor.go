package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor converts glTF animations into model.AnimationClip values.
// Each channel becomes one keyframe track that targets a node by its document index.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index.
	// Channels without a target node are skipped.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//
	// Returns:
	//   - *model.AnimationClip: the extracted animation clip
	//   - error: error if a sampler or accessor is invalid
	ExtractAnimation(animIndex int) (*model.AnimationClip, error)

	// ExtractAllAnimations extracts every animation from the document in document order.
	//
	// Returns:
	//   - []*model.AnimationClip: all extracted animation clips
	//   - error: error if extraction fails
	ExtractAllAnimations() ([]*model.AnimationClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int) (*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation %d: %w", animIndex, ErrIndexOutOfRange)
	}

	anim := &doc.Animations[animIndex]
	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}
	clip := &model.AnimationClip{Name: name}

	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Target.Node == nil {
			continue
		}
		node := *ch.Target.Node
		if node < 0 || node >= len(doc.Nodes) {
			return nil, fmt.Errorf("animation %q channel %d: node %d: %w", name, i, node, ErrIndexOutOfRange)
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: %w: sampler %d", name, i, ErrInvalidAnimation, ch.Sampler)
		}

		track, err := e.extractTrack(node, ch.Target.Path, &anim.Samplers[ch.Sampler])
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}

		clip.Tracks = append(clip.Tracks, track)
		clip.Duration = max(clip.Duration, track.Duration())
	}

	return clip, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() ([]*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	clips := make([]*model.AnimationClip, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.ExtractAnimation(i)
		if err != nil {
			return nil, err
		}
		clips[i] = clip
	}
	return clips, nil
}

// extractTrack reads the keyframe times and values of one sampler.
func (e *gltfAnimationExtractorImpl) extractTrack(node int, path string, sampler *gltfAnimSampler) (*model.Track, error) {
	interp := model.Interpolation(sampler.Interpolation)
	switch interp {
	case "":
		interp = model.InterpolationLinear
	case model.InterpolationLinear, model.InterpolationStep, model.InterpolationCubicSpline:
	default:
		return nil, fmt.Errorf("%w: interpolation %q", ErrInvalidAnimation, sampler.Interpolation)
	}

	times, _, err := e.parser.ReadFloatAccessor(sampler.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyframe times: %w", err)
	}
	for k := 1; k < len(times); k++ {
		if times[k] < times[k-1] {
			return nil, fmt.Errorf("%w: keyframe times are not increasing", ErrInvalidAnimation)
		}
	}
	values, comps, err := e.parser.ReadFloatAccessor(sampler.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyframe values: %w", err)
	}

	perKey := 1
	if interp == model.InterpolationCubicSpline {
		perKey = 3
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: sampler has no keyframes", ErrInvalidAnimation)
	}

	var components int
	switch model.TrackPath(path) {
	case model.PathTranslation, model.PathScale:
		components = 3
	case model.PathRotation:
		components = 4
	case model.PathWeights:
		// weights are output as a scalar stream of morph target count per keyframe
		components = len(values) / (len(times) * perKey)
	default:
		return nil, fmt.Errorf("%w: target path %q", ErrInvalidAnimation, path)
	}
	if model.TrackPath(path) != model.PathWeights && comps != components {
		return nil, fmt.Errorf("%w: %s output has %d components", ErrInvalidAnimation, path, comps)
	}
	if components == 0 || len(values) != len(times)*perKey*components {
		return nil, fmt.Errorf("%w: %d values for %d keyframes", ErrInvalidAnimation, len(values), len(times))
	}

	return &model.Track{
		Node:          node,
		Path:          model.TrackPath(path),
		Interpolation: interp,
		Times:         times,
		Values:        values,
		Components:    components,
	}, nil
}
