package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"travelmate/backend/config"
	"travelmate/backend/database"
	"travelmate/backend/models"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Inspect chat rooms",
}

var (
	listDestination string
	listContinent   string
	listCategory    string
	listJSON        bool
)

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active chat rooms",
	Long:  `list prints the active chat rooms, newest first, using the same filters as GET /chatrooms.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := models.RoomFilter{Destination: listDestination}
		if listContinent != "" {
			c, err := models.ParseContinent(listContinent)
			if err != nil {
				return err
			}
			f.Continent = c
		}
		if listCategory != "" {
			c, err := models.ParseRoomCategory(listCategory)
			if err != nil {
				return err
			}
			f.Category = c
		}

		cfg := config.LoadConfig()
		log := newLogger(cfg)
		db, err := connect(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer db.Disconnect()

		rooms, err := database.NewChatRoomStore(db).List(cmd.Context(), f)
		if err != nil {
			return err
		}
		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rooms)
		}
		return printRooms(cmd.OutOrStdout(), rooms)
	},
}

func init() {
	roomsListCmd.Flags().StringVarP(&listDestination, "destination", "d", "", "case-insensitive destination substring")
	roomsListCmd.Flags().StringVar(&listContinent, "continent", "", "continent filter")
	roomsListCmd.Flags().StringVar(&listCategory, "category", "", "category filter")
	roomsListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
	roomsCmd.AddCommand(roomsListCmd)
}

func printRooms(out io.Writer, rooms []models.ChatRoom) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESTINATION\tMEMBERS\tCREATED")
	for _, r := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			r.ID.Hex(), r.Name, r.Destination, len(r.Members), r.MaxMembers, r.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
