package photo

import (
	"github.com/matzehuels/polaroid/pkg/errors"
)

// Album is an ordered collection of photos with an active filter that new
// photos inherit.
type Album struct {
	Title  string
	Filter string
	Photos []Photo
}

// NewAlbum creates an empty album.
func NewAlbum(title string) *Album {
	return &Album{Title: title, Filter: FilterNone}
}

// Len returns the number of photos.
func (a *Album) Len() int { return len(a.Photos) }

// Add appends one photo per source path. New photos inherit the album's
// active filter and default framing. It returns the added photos.
func (a *Album) Add(sources ...string) ([]Photo, error) {
	added := make([]Photo, 0, len(sources))
	for _, src := range sources {
		if err := errors.ValidateImageFilename(src); err != nil {
			return nil, err
		}
		added = append(added, New(src, a.Filter))
	}
	a.Photos = append(a.Photos, added...)
	return added, nil
}

// Get returns the photo with the given id.
func (a *Album) Get(id string) (Photo, error) {
	i, err := a.index(id)
	if err != nil {
		return Photo{}, err
	}
	return a.Photos[i], nil
}

// Remove deletes the photo with the given id, keeping the order of the rest.
func (a *Album) Remove(id string) error {
	i, err := a.index(id)
	if err != nil {
		return err
	}
	a.Photos = append(a.Photos[:i], a.Photos[i+1:]...)
	return nil
}

// SetCaption replaces the caption of a photo.
func (a *Album) SetCaption(id, caption string) error {
	caption = NormalizeCaption(caption)
	if err := errors.ValidateCaption(caption); err != nil {
		return err
	}
	return a.update(id, func(p Photo) Photo {
		p.Caption = caption
		return p
	})
}

// Adjust applies a partial framing update to a photo.
func (a *Album) Adjust(id string, adj Adjustment) error {
	return a.update(id, adj.Apply)
}

// Nudge applies a drag of (dx, dy) pixels to a photo's framing.
func (a *Album) Nudge(id string, dx, dy float64) error {
	return a.update(id, func(p Photo) Photo { return p.Nudge(dx, dy) })
}

// SetFilter replaces the filter of a single photo.
func (a *Album) SetFilter(id, filter string) error {
	css, err := ResolveFilter(filter)
	if err != nil {
		return err
	}
	return a.update(id, func(p Photo) Photo {
		p.Filter = css
		return p
	})
}

// ApplyFilterToAll makes filter the active filter and applies it to every
// photo. filter may be a preset name or a CSS filter list.
func (a *Album) ApplyFilterToAll(filter string) error {
	css, err := ResolveFilter(filter)
	if err != nil {
		return err
	}
	a.Filter = css
	for i := range a.Photos {
		a.Photos[i].Filter = css
	}
	return nil
}

// Move relocates the photo with the given id to position to, shifting the
// photos in between.
func (a *Album) Move(id string, to int) error {
	i, err := a.index(id)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(a.Photos) {
		return errors.New(errors.ErrCodeInvalidInput, "position %d out of range [0, %d)", to, len(a.Photos))
	}
	p := a.Photos[i]
	a.Photos = append(a.Photos[:i], a.Photos[i+1:]...)
	a.Photos = append(a.Photos[:to], append([]Photo{p}, a.Photos[to:]...)...)
	return nil
}

func (a *Album) update(id string, fn func(Photo) Photo) error {
	i, err := a.index(id)
	if err != nil {
		return err
	}
	a.Photos[i] = fn(a.Photos[i])
	return nil
}

// index resolves a full id or a unique id prefix.
func (a *Album) index(id string) (int, error) {
	if id == "" {
		return -1, errors.New(errors.ErrCodeInvalidInput, "photo id cannot be empty")
	}
	found := -1
	for i, p := range a.Photos {
		if p.ID == id {
			return i, nil
		}
		if len(id) < len(p.ID) && p.ID[:len(id)] == id {
			if found >= 0 {
				return -1, errors.New(errors.ErrCodeInvalidInput, "photo id prefix %q is ambiguous", id)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, errors.New(errors.ErrCodeNotFound, "photo %q not found", id)
	}
	return found, nil
}
