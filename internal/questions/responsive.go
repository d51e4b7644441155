package questions

import (
	"strconv"

	"github.com/thatcatcamp/sitebuilder/internal/console"
	"github.com/thatcatcamp/sitebuilder/internal/imagestyles"
	"github.com/thatcatcamp/sitebuilder/internal/validate"
)

// DefaultResponsiveID is offered when asking for a responsive image style ID
const DefaultResponsiveID = "style"

// ResponsiveImage fills in the ID, label and dimensions of a responsive image
// style request. Zero dimensions in given are asked for; a height left empty
// means the derivatives keep the source aspect ratio.
func (a *Asker) ResponsiveImage(given imagestyles.ResponsiveRequest) (imagestyles.ResponsiveRequest, error) {
	req := given

	idValidator := func(id string) (string, error) {
		return imagestyles.ValidateNewResponsiveImageID(a.db, id)
	}

	var err error
	if req.ID != "" {
		req.ID, err = idValidator(req.ID)
	} else {
		req.ID, err = a.io.Ask("Responsive image style ID", DefaultResponsiveID, idValidator)
	}
	if err != nil {
		return req, err
	}

	if req.Label == "" {
		req.Label, err = a.io.Ask("Responsive image style label", console.Humanize(req.ID), nil)
		if err != nil {
			return req, err
		}
	}

	if req.Width == 0 {
		answer, err := a.io.Ask("Width", "", dimension)
		if err != nil {
			return req, err
		}
		req.Width, _ = strconv.Atoi(answer)
	} else if _, err := validate.DimensionLength(strconv.Itoa(req.Width)); err != nil {
		return req, err
	}

	if req.Height == nil {
		answer, err := a.io.AskEmpty("Height (leave empty to keep the aspect ratio)", "", dimension)
		if err != nil {
			return req, err
		}
		if answer != "" {
			height, _ := strconv.Atoi(answer)
			req.Height = &height
		}
	} else if _, err := validate.DimensionLength(strconv.Itoa(*req.Height)); err != nil {
		return req, err
	}

	return req, nil
}

func dimension(value string) (string, error) {
	length, err := validate.DimensionLength(value)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(length), nil
}
