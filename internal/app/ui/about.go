package ui

import (
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mkalinski/sona/internal/github"
)

const (
	githubOwner = "mkalinski"
	githubRepo  = "sona"
	websiteURL  = "https://github.com/mkalinski/sona"
)

func (u *UI) showAboutDialog() {
	title := widget.NewLabel(u.appName())
	title.TextStyle = fyne.TextStyle{Bold: true}
	shown := u.version
	if v, err := github.NormalizeVersion(u.version); err == nil {
		shown = v
	}
	version := widget.NewLabel("Version: " + shown)
	site, _ := url.Parse(websiteURL)
	link := widget.NewHyperlink("Website", site)
	updateInfo := widget.NewLabel("")
	check := widget.NewButton("Check for updates", func() {
		updateInfo.SetText("Checking...")
		go func() {
			v, err := github.AvailableUpdate(githubOwner, githubRepo, u.version)
			fyne.Do(func() {
				if err != nil {
					updateInfo.SetText("Update check failed")
					u.showErrorDialog("Update check failed", err)
					return
				}
				if v.IsNewer {
					updateInfo.SetText(fmt.Sprintf("Version %s is available", v.Latest))
				} else {
					updateInfo.SetText("You have the latest version")
				}
			})
		}()
	})
	c := container.NewVBox(title, version, link, check, updateInfo)
	d := dialog.NewCustom("About", "Close", c, u.Window)
	d.Show()
}
